package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/service"
)

// UserHandler serves user records and the friendship endpoints.
type UserHandler struct {
	Users *service.UserService
	Rel   *service.RelationshipManager
}

func NewUserHandler(users *service.UserService, rel *service.RelationshipManager) *UserHandler {
	if users == nil || rel == nil {
		panic("nil service passed to NewUserHandler")
	}
	return &UserHandler{Users: users, Rel: rel}
}

// Create: POST /v1/users
func (h *UserHandler) Create(c echo.Context) error {
	var req userReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.Create(ctx, req.toModel(0), req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newUserResp(u))
}

// Update: PUT /v1/users/:id
func (h *UserHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req userReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.Update(ctx, req.toModel(id), req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResp(u))
}

// Get: GET /v1/users/:id
func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResp(u))
}

// List: GET /v1/users
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	us, err := h.Users.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUsersResp(us))
}

// friendPair reads :id and :friendId.
func friendPair(c echo.Context) (uint64, uint64, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	friendID, err := parseID(c, "friendId")
	if err != nil {
		return 0, 0, err
	}
	return id, friendID, nil
}

// AddFriend: PUT /v1/users/:id/friends/:friendId
func (h *UserHandler) AddFriend(c echo.Context) error {
	return h.friendOp(c, h.Rel.AddFriend)
}

// ConfirmFriend: PUT /v1/users/:id/friends/:friendId/confirm
func (h *UserHandler) ConfirmFriend(c echo.Context) error {
	return h.friendOp(c, h.Rel.ConfirmFriend)
}

// RemoveFriend: DELETE /v1/users/:id/friends/:friendId
func (h *UserHandler) RemoveFriend(c echo.Context) error {
	return h.friendOp(c, h.Rel.RemoveFriend)
}

// friendOp runs op on the path pair and answers with the actor's record
// so the client sees the resulting edge status.
func (h *UserHandler) friendOp(c echo.Context, op func(ctx context.Context, actorID, targetID uint64) error) error {
	id, friendID, err := friendPair(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := op(ctx, id, friendID); err != nil {
		return respondError(c, err)
	}
	u, err := h.Users.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResp(u))
}

// ListFriends: GET /v1/users/:id/friends
func (h *UserHandler) ListFriends(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	us, err := h.Rel.ListFriends(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUsersResp(us))
}

// ListCommonFriends: GET /v1/users/:id/friends/common/:otherId
func (h *UserHandler) ListCommonFriends(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	otherID, err := parseID(c, "otherId")
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	us, err := h.Rel.ListCommonFriends(ctx, id, otherID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUsersResp(us))
}
