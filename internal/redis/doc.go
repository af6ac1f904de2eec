// Package redis implements the vote store and the status Pub/Sub
// channel on top of go-redis. Votes live in one sorted set per venue,
// scored by submission time, which gives the live-window query and the
// retention sweep the same cheap score-range primitives.
package redis
