package persistence

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Status classifies the outcome of a remote write.
type Status int

const (
	StatusOK Status = iota
	StatusRetryable
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRetryable:
		return "retryable"
	case StatusFatal:
		return "fatal"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Result is returned by every remote persistence call instead of a bare error.
type Result struct {
	Status Status
	Err    error
}

func OK() Result {
	return Result{Status: StatusOK}
}

func Retryable(err error) Result {
	return Result{Status: StatusRetryable, Err: err}
}

func Fatal(err error) Result {
	return Result{Status: StatusFatal, Err: err}
}

func (r Result) IsOK() bool {
	return r.Status == StatusOK
}

func (r Result) Retryable() bool {
	return r.Status == StatusRetryable
}

func (r Result) Error() string {
	if r.Err == nil {
		return r.Status.String()
	}
	return fmt.Sprintf("%s: %v", r.Status, r.Err)
}

// Postgres error classes that describe transient server or connection state.
var retryableClasses = map[string]bool{
	"08": true, // connection exception
	"40": true, // transaction rollback, serialization failures and deadlocks
	"53": true, // insufficient resources
	"57": true, // operator intervention, includes admin shutdown
	"58": true, // system error
}

// Classify maps a driver error onto a Result.
func Classify(err error) Result {
	if err == nil {
		return OK()
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Retryable(err)
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, pgx.ErrTooManyRows) {
		return Fatal(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) >= 2 && retryableClasses[pgErr.Code[:2]] {
			return Retryable(err)
		}
		return Fatal(err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return Retryable(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return Retryable(err)
	}

	return Fatal(err)
}

// Policy selects what happens to retryable failures.
type Policy string

const (
	// PolicyBestEffort logs and drops failed writes; local state stays authoritative.
	PolicyBestEffort Policy = "best_effort"
	// PolicyAtLeastOnce parks retryable failures in the outbox until they succeed.
	PolicyAtLeastOnce Policy = "at_least_once"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyBestEffort, "":
		return PolicyBestEffort, nil
	case PolicyAtLeastOnce:
		return PolicyAtLeastOnce, nil
	}
	return "", fmt.Errorf("unknown sync policy %q", s)
}
