// Package services holds the lexcheck use cases: analysis runs, the
// regulation knowledge base, stored reports and settings. Each service
// implements a driving port and talks to the outside only through driven ports.
package services
