package domain

import (
	"context"
	"fmt"
)

type ctxKey string

const CtxUserInfo ctxKey = "userInfo"

const (
	CtxSystemAdminId = "_VP_SYS_ADMIN_"
	CtxUnknownUserId = "_VP_SYS_UNKNOWN_"
)

type ContextUserInfo struct {
	Id      string
	IsAdmin bool
}

func (u *ContextUserInfo) String() string {
	return fmt.Sprintf("%s|%t", u.Id, u.IsAdmin)
}

func (u *ContextUserInfo) UserId() string {
	return u.Id
}

func DefaultContextUserInfo() *ContextUserInfo {
	return &ContextUserInfo{
		Id:      CtxUnknownUserId,
		IsAdmin: false,
	}
}

func SystemAdminContextUserInfo() *ContextUserInfo {
	return &ContextUserInfo{
		Id:      CtxSystemAdminId,
		IsAdmin: true,
	}
}

func SetUserInfo(ctx context.Context, info *ContextUserInfo) context.Context {
	ctx = context.WithValue(ctx, CtxUserInfo, info)
	return ctx
}

func GetUserInfo(ctx context.Context) *ContextUserInfo {
	rawInfo := ctx.Value(CtxUserInfo)
	if rawInfo == nil {
		return DefaultContextUserInfo()
	}

	if info, ok := rawInfo.(*ContextUserInfo); ok {
		return info
	}

	return DefaultContextUserInfo()
}

// ValidateAdminAccess returns ErrNoPermission if the context user is not an administrator.
func ValidateAdminAccess(ctx context.Context) error {
	if !GetUserInfo(ctx).IsAdmin {
		return ErrNoPermission
	}

	return nil
}
