package domain

import "errors"

var (
	ErrPollNotFound           = errors.New("poll not found")
	ErrPollNotOpen            = errors.New("poll is not open for voting")
	ErrIdentityRequired       = errors.New("anonymous vote requires an anonymous token")
	ErrAuthenticationRequired = errors.New("authentication required to vote on this poll")
	ErrUnknownQuestion        = errors.New("unknown question for this poll")
	ErrUnknownOption          = errors.New("unknown option")
	ErrDuplicateResponse      = errors.New("response already exists for this voter")
)
