package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/alextanhongpin/go-social/domain"
	"github.com/alextanhongpin/go-social/usecase"
)

// Dispatcher routes a decoded request to its handler. It validates shape
// only; all graph/account work happens in the usecase layer.
type Dispatcher struct {
	social   *usecase.Social
	validate *validator.Validate
	logger   *slog.Logger
}

func NewDispatcher(social *usecase.Social, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		social:   social,
		validate: validator.New(),
		logger:   logger,
	}
}

// Dispatch decodes one request payload and returns the response payload.
// It never returns an error: every failure becomes an error response.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte) any {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		requestsTotal.WithLabelValues("unknown", statusError).Inc()
		return Error("invalid request")
	}

	res := d.route(ctx, env.Action, raw)

	status := statusSuccess
	if r, okay := res.(interface{ Err() error }); okay && r.Err() != nil {
		status = statusError
	}
	action := env.Action
	if action == "" {
		action = "unknown"
	}
	requestsTotal.WithLabelValues(action, status).Inc()
	return res
}

func (d *Dispatcher) route(ctx context.Context, action string, raw []byte) any {
	switch action {
	case ActionLogin:
		return d.login(ctx, raw)
	case ActionRegister:
		return d.register(ctx, raw)
	case ActionUpdateProfile:
		return d.updateProfile(ctx, raw)
	case ActionChangePassword:
		return d.changePassword(ctx, raw)
	case ActionAddFriend:
		return d.addFriend(ctx, raw)
	case ActionRemoveFriend:
		return d.removeFriend(ctx, raw)
	case ActionGetFriends:
		return d.getFriends(ctx, raw)
	case ActionFindPath:
		return d.findPath(ctx, raw)
	case ActionGetSuggestions:
		return d.getSuggestions(ctx, raw)
	case ActionSearchUser:
		return d.searchUser(ctx, raw)
	case ActionGetStats:
		return d.getStats(ctx)
	default:
		return Error("invalid action")
	}
}

// decode unmarshals raw into req and checks its required fields.
func (d *Dispatcher) decode(raw []byte, req any) error {
	if err := json.Unmarshal(raw, req); err != nil {
		return err
	}
	return d.validate.Struct(req)
}

// message maps domain errors to client-facing text. Anything unexpected
// is logged and reported as an internal error.
func (d *Dispatcher) message(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid credentials"
	case errors.Is(err, domain.ErrNotFound):
		return "user not found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return "user already exists"
	case errors.Is(err, domain.ErrNotFriends):
		return "users are not friends"
	case errors.Is(err, domain.ErrNoPath):
		return "no path found"
	case errors.Is(err, usecase.ErrSelfFriendship):
		return "cannot befriend yourself"
	default:
		d.logger.Error("handler failed", "error", err)
		return "internal error"
	}
}

func (d *Dispatcher) login(ctx context.Context, raw []byte) any {
	var req LoginRequest
	if err := d.decode(raw, &req); err != nil {
		return Error("invalid request")
	}
	profile, err := d.social.Login(ctx, req.Username, req.Password)
	if err != nil {
		return Error(d.message(err))
	}
	return LoginResponse{Status: ok(), UserData: profile}
}

func (d *Dispatcher) register(ctx context.Context, raw []byte) any {
	var req RegisterRequest
	if err := d.decode(raw, &req); err != nil {
		return Error("invalid request")
	}
	if err := d.social.Register(ctx, req.Username, req.Password, req.Name, req.Photo); err != nil {
		return Error(d.message(err))
	}
	return okMessage("user registered")
}

func (d *Dispatcher) updateProfile(ctx context.Context, raw []byte) any {
	var req UpdateProfileRequest
	if err := d.decode(raw, &req); err != nil {
		return Error("invalid request")
	}
	profile, err := d.social.UpdateProfile(ctx, req.Username, req.Name, req.Photo)
	if err != nil {
		return Error(d.message(err))
	}
	return ProfileResponse{Status: okMessage("profile updated"), UserData: profile}
}

func (d *Dispatcher) changePassword(ctx context.Context, raw []byte) any {
	var req ChangePasswordRequest
	if err := d.decode(raw, &req); err != nil {
		return Error("invalid request")
	}
	if err := d.social.ChangePassword(ctx, req.Username, req.OldPassword, req.NewPassword); err != nil {
		return Error(d.message(err))
	}
	return okMessage("password changed")
}

func (d *Dispatcher) addFriend(ctx context.Context, raw []byte) any {
	var req FriendPairRequest
	if err := d.decode(raw, &req); err != nil {
		return Error("invalid request")
	}
	if err := d.social.AddFriend(ctx, req.User1, req.User2); err != nil {
		return Error(d.message(err))
	}
	return okMessage("friend added")
}

func (d *Dispatcher) removeFriend(ctx context.Context, raw []byte) any {
	var req FriendPairRequest
	if err := d.decode(raw, &req); err != nil {
		return Error("invalid request")
	}
	if err := d.social.RemoveFriend(ctx, req.User1, req.User2); err != nil {
		return Error(d.message(err))
	}
	return okMessage("friend removed")
}

func (d *Dispatcher) getFriends(ctx context.Context, raw []byte) any {
	var req UsernameRequest
	if err := d.decode(raw, &req); err != nil {
		return Error("invalid request")
	}
	friends, err := d.social.Friends(ctx, req.Username)
	if err != nil {
		return Error(d.message(err))
	}
	return FriendsResponse{Status: ok(), Friends: friends}
}

func (d *Dispatcher) findPath(ctx context.Context, raw []byte) any {
	var req FindPathRequest
	if err := d.decode(raw, &req); err != nil {
		return Error("invalid request")
	}
	path, err := d.social.FindPath(ctx, req.Start, req.End)
	if err != nil {
		return Error(d.message(err))
	}
	return PathResponse{Status: ok(), Path: path}
}

func (d *Dispatcher) getSuggestions(ctx context.Context, raw []byte) any {
	var req UsernameRequest
	if err := d.decode(raw, &req); err != nil {
		return Error("invalid request")
	}
	suggestions, err := d.social.Suggestions(ctx, req.Username)
	if err != nil {
		return Error(d.message(err))
	}
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}
	return SuggestionsResponse{Status: ok(), Suggestions: suggestions}
}

func (d *Dispatcher) searchUser(ctx context.Context, raw []byte) any {
	var req SearchRequest
	if err := d.decode(raw, &req); err != nil {
		return Error("invalid request")
	}
	users, err := d.social.Search(ctx, req.Query, req.CurrentUser)
	if err != nil {
		return Error(d.message(err))
	}
	return UsersResponse{Status: ok(), Users: users}
}

func (d *Dispatcher) getStats(ctx context.Context) any {
	return StatsResponse{Status: ok(), Stats: d.social.Stats(ctx)}
}
