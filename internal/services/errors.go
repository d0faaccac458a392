package services

import "errors"

// 业务错误，handler 按类型映射到 HTTP 状态码
var (
	ErrNotFound      = errors.New("resource not found")
	ErrNotAMember    = errors.New("not a member of this group")
	ErrAlreadyMember = errors.New("already a member of this group")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidInput  = errors.New("invalid input")

	ErrUserExists         = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
