// Package domain contains the core types and store contracts of the
// busyness estimation system. It has no dependencies on transport or
// storage packages; those implement the interfaces defined here.
package domain
