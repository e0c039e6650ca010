package server

import (
	"errors"

	"github.com/alextanhongpin/go-social/domain"
)

// Request actions. The set is closed; anything else is rejected by the
// dispatcher.
const (
	ActionLogin          = "login"
	ActionRegister       = "register"
	ActionUpdateProfile  = "update_profile"
	ActionChangePassword = "change_password"
	ActionAddFriend      = "add_friend"
	ActionRemoveFriend   = "remove_friend"
	ActionGetFriends     = "get_friends"
	ActionFindPath       = "find_path"
	ActionGetSuggestions = "get_suggestions"
	ActionSearchUser     = "search_user"
	ActionGetStats       = "get_stats"
)

// envelope is the first-pass decode of every request: just the tag.
type envelope struct {
	Action string `json:"action"`
}

type LoginRequest struct {
	Action   string `json:"action"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Action   string `json:"action"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Photo    string `json:"photo"`
}

type UpdateProfileRequest struct {
	Action   string  `json:"action"`
	Username string  `json:"username" validate:"required"`
	Name     string  `json:"name"`
	Photo    *string `json:"photo"`
}

type ChangePasswordRequest struct {
	Action      string `json:"action"`
	Username    string `json:"username" validate:"required"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// FriendPairRequest serves both add_friend and remove_friend.
type FriendPairRequest struct {
	Action string `json:"action"`
	User1  string `json:"user1" validate:"required"`
	User2  string `json:"user2" validate:"required"`
}

// UsernameRequest serves get_friends and get_suggestions.
type UsernameRequest struct {
	Action   string `json:"action"`
	Username string `json:"username" validate:"required"`
}

type FindPathRequest struct {
	Action string `json:"action"`
	Start  string `json:"start" validate:"required"`
	End    string `json:"end" validate:"required"`
}

type SearchRequest struct {
	Action      string `json:"action"`
	Query       string `json:"query"`
	CurrentUser string `json:"current_user"`
}

type StatsRequest struct {
	Action string `json:"action"`
}

// Status is embedded in every response.
type Status struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Err returns the response message as an error for non-success
// responses. Used by the client.
func (s Status) Err() error {
	if s.Status == statusSuccess {
		return nil
	}
	if s.Message == "" {
		return errors.New("request failed")
	}
	return errors.New(s.Message)
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

func ok() Status {
	return Status{Status: statusSuccess}
}

func okMessage(msg string) Status {
	return Status{Status: statusSuccess, Message: msg}
}

// Error builds the error response payload sent for any failed request.
func Error(msg string) Status {
	return Status{Status: statusError, Message: msg}
}

type LoginResponse struct {
	Status
	UserData domain.Profile `json:"user_data"`
}

type ProfileResponse struct {
	Status
	UserData domain.Profile `json:"user_data"`
}

type FriendsResponse struct {
	Status
	Friends []domain.Friend `json:"friends"`
}

type PathResponse struct {
	Status
	Path []string `json:"path"`
}

type SuggestionsResponse struct {
	Status
	Suggestions []domain.Suggestion `json:"suggestions"`
}

type UsersResponse struct {
	Status
	Users []domain.SearchResult `json:"users"`
}

type StatsResponse struct {
	Status
	Stats domain.Stats `json:"stats"`
}
