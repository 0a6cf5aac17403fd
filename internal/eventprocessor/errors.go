// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventprocessor

import "errors"

// ErrNATSNotEnabled is returned when the nats transport is selected in a
// binary built without -tags nats.
var ErrNATSNotEnabled = errors.New("NATS event processing not enabled (build with -tags nats)")

// ErrNilPublisher is returned when a component is constructed without a
// publisher.
var ErrNilPublisher = errors.New("publisher cannot be nil")

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// ErrUnknownTransport is returned by NewTransport for an unrecognized name.
var ErrUnknownTransport = errors.New("unknown event transport")

// DropReason classifies why a message can never be processed.
type DropReason string

// Drop reasons reported when a permanent failure is acked.
const (
	ReasonMalformedPayload DropReason = "malformed_payload"
	ReasonInvalidEvent     DropReason = "invalid_event"
	ReasonReviewDeleted    DropReason = "review_deleted"
	ReasonCorruptEntry     DropReason = "corrupt_outbox_entry"
)

// PermanentError marks a message that will never succeed. The router acks it
// instead of retrying and reports Reason.
type PermanentError struct {
	Reason DropReason
	Cause  error
}

// NewPermanentError wraps cause as permanent.
func NewPermanentError(reason DropReason, cause error) *PermanentError {
	return &PermanentError{Reason: reason, Cause: cause}
}

func (e *PermanentError) Error() string {
	if e.Cause == nil {
		return string(e.Reason)
	}
	return string(e.Reason) + ": " + e.Cause.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Cause
}

// IsPermanentError reports whether err, or anything it wraps, is permanent.
func IsPermanentError(err error) bool {
	_, ok := PermanentReason(err)
	return ok
}

// PermanentReason returns the drop reason of the first PermanentError in
// err's chain.
func PermanentReason(err error) (DropReason, bool) {
	var permErr *PermanentError
	if errors.As(err, &permErr) {
		return permErr.Reason, true
	}
	return "", false
}
