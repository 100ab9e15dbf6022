// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"errors"

	"github.com/ManuGH/vodplayer/internal/playback/model"
)

var (
	ErrIllegalTransition = errors.New("illegal lifecycle transition")
	ErrBadRequest        = errors.New("bad request")
	ErrSessionFatal      = errors.New("session fatal")
	ErrDecodeFatal       = errors.New("decode fatal")
	ErrUnsupported       = errors.New("unsupported playback format")
	ErrSessionCanceled   = errors.New("session canceled")
	ErrUnknown           = errors.New("unknown session error")
)

// ReasonErrorClass maps a reason code to its sentinel error class so
// callers can errors.Is against a stable taxonomy.
func ReasonErrorClass(reason model.ReasonCode) error {
	switch reason {
	case model.RBadRequest:
		return ErrBadRequest
	case model.RSessionCreateFailed, model.RManifestLoadFailed:
		return ErrSessionFatal
	case model.RUnsupportedFormat:
		return ErrUnsupported
	case model.RDecodeFatal:
		return ErrDecodeFatal
	case model.RClientStop, model.RCancelled:
		return ErrSessionCanceled
	case model.RUnknown:
		return ErrUnknown
	case model.RNone, model.REndOfContent:
		return nil
	default:
		return ErrUnknown
	}
}
