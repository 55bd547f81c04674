package service

import "errors"

// Сентинельные ошибки бизнес-логики. Хендлеры отображают их в HTTP-статусы
// и единый конверт ответа; тексты уходят клиенту как есть.
var (
	// 401
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("current password is incorrect")

	// 403
	ErrSelfClaim   = errors.New("you cannot claim an item that you posted")
	ErrNotOwner    = errors.New("you do not have permission to perform this action")
	ErrNotClaimant = errors.New("you are not authorized to view these claimed item details")

	// 404
	ErrUserNotFound      = errors.New("user not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrClaimNotFound     = errors.New("claim not found")
	ErrQuestionsNotFound = errors.New("no verification questions found for this item")

	// 409
	ErrEmailTaken     = errors.New("email is already registered")
	ErrDuplicateClaim = errors.New("you have already submitted a claim for this item")
	ErrClaimDecided   = errors.New("this claim has already been decided")

	// 400
	ErrInvalidStatus     = errors.New("invalid status provided")
	ErrQuestionsRequired = errors.New("verification questions are required for found items")
	ErrNoMatchedAnswers  = errors.New("no answers matched known questions")
	ErrInvalidItemID     = errors.New("invalid item ID format")
)
