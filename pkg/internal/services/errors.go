package services

import "errors"

var (
	ErrMeetingNotFound        = errors.New("meeting not found")
	ErrMeetingForbidden       = errors.New("you are not allowed to join this meeting")
	ErrUnauthenticated        = errors.New("sign in or join as guest to continue")
	ErrNotMeetingCreator      = errors.New("only the meeting creator can do this")
	ErrMeetingEnded           = errors.New("this meeting has been ended")
	ErrMeetingNotStarted      = errors.New("this meeting has not started yet")
	ErrInvalidStartTime       = errors.New("invalid meeting start time")
	ErrParticipantsUnresolved = errors.New("none of the participant emails belong to a known account")
)
