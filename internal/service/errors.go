package service

import "errors"

var (
	ErrConversationNotFound    = errors.New("conversation not found")
	ErrConversationDeleted     = errors.New("conversation already exists and was deleted")
	ErrMessageNotFound         = errors.New("message not found")
	ErrSameParticipants        = errors.New("cannot create conversation with the same user")
	ErrSenderNotParticipant    = errors.New("sender not authorized in this conversation")
	ErrRecipientNotParticipant = errors.New("recipient not authorized in this conversation")
	ErrMissingFields           = errors.New("missing required fields")
	ErrInvalidStatus           = errors.New("invalid status value")
	ErrStatusRegression        = errors.New("message status cannot move backwards")
)
