package domain

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies how a user account authenticates.
const (
	ProviderLocal    = "local"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// User mirrors the backend wire shape. It is immutable once fetched;
// every successful auth response replaces it wholesale.
type User struct {
	ID          int     `json:"id"`
	Username    string  `json:"username"`
	Provider    string  `json:"provider"`
	Email       *string `json:"email"`
	DisplayName *string `json:"displayName"`
	CreatedAt   *string `json:"createdAt"`
	UpdatedAt   *string `json:"updatedAt"`
}

// AuthResponse is the backend's envelope for register/login/logout.
type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// UserInfoResponse is the backend's envelope for the current-user probe.
type UserInfoResponse struct {
	User     *User  `json:"user"`
	AuthType string `json:"authType,omitempty"`
}

// MessageOrigin tells whether a message came from the owner or the pet.
type MessageOrigin string

const (
	OriginUser MessageOrigin = "user"
	OriginPet  MessageOrigin = "pet"
)

// Message is one entry of the conversation log. Messages are append-only:
// never mutated after creation, never deleted individually.
type Message struct {
	ID        uuid.UUID     `json:"id"`
	Content   string        `json:"content"`
	Origin    MessageOrigin `json:"origin"`
	Mood      string        `json:"mood,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// NewMessage stamps a message with a fresh ID and the current time.
func NewMessage(content string, origin MessageOrigin, mood string) Message {
	return Message{
		ID:        uuid.New(),
		Content:   content,
		Origin:    origin,
		Mood:      mood,
		CreatedAt: time.Now(),
	}
}

// PetStatus is the pet's presence indicator.
type PetStatus string

const (
	StatusOnline  PetStatus = "online"
	StatusOffline PetStatus = "offline"
)

// Pet is a virtual pet profile. Experience never drops below zero; when it
// reaches ExperienceCap the pet levels up and the cap grows by half.
type Pet struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Avatar        string    `json:"avatar"`
	Breed         string    `json:"breed"`
	Age           int       `json:"age"`
	Personality   []string  `json:"personality"`
	Signature     string    `json:"signature"`
	Mood          string    `json:"mood"`
	Status        PetStatus `json:"status"`
	Level         int       `json:"level"`
	Experience    int       `json:"experience"`
	ExperienceCap int       `json:"experienceCap"`
}

// PersonalityText joins the personality tags for prompt building.
func (p Pet) PersonalityText() string {
	out := ""
	for i, tag := range p.Personality {
		if i > 0 {
			out += "、"
		}
		out += tag
	}
	return out
}

// Feed is one social feed post. Likes and Comments only ever increment.
type Feed struct {
	ID        uuid.UUID `json:"id"`
	PetID     uuid.UUID `json:"petId"`
	PetName   string    `json:"petName"`
	PetAvatar string    `json:"petAvatar"`
	Content   string    `json:"content"`
	Images    []string  `json:"images"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	Shares    int       `json:"shares"`
	IsLiked   bool      `json:"isLiked"`
	Mood      string    `json:"mood,omitempty"`
	Topics    []string  `json:"topics"`
	CreatedAt time.Time `json:"createdAt"`
}

// InteractionAction is one of the quick interaction buttons.
type InteractionAction string

const (
	ActionFeed  InteractionAction = "喂食"
	ActionPet   InteractionAction = "抚摸"
	ActionPlay  InteractionAction = "玩耍"
	ActionWalk  InteractionAction = "散步"
	ActionWash  InteractionAction = "洗澡"
	ActionTrain InteractionAction = "训练"
)

// Emoji returns the glyph shown on the action button.
func (a InteractionAction) Emoji() string {
	switch a {
	case ActionFeed:
		return "🍖"
	case ActionPet:
		return "👋"
	case ActionPlay:
		return "🎾"
	case ActionWalk:
		return "🦮"
	case ActionWash:
		return "🛁"
	case ActionTrain:
		return "🎓"
	default:
		return ""
	}
}

// UserMessage returns the canned owner-side message sent when the action
// is triggered.
func (a InteractionAction) UserMessage() string {
	switch a {
	case ActionFeed:
		return "我给你带来了美味的食物！"
	case ActionPet:
		return "摸摸头，做得好！"
	case ActionPlay:
		return "来玩球吧！"
	case ActionWalk:
		return "我们去散步吧！"
	case ActionWash:
		return "该洗澡了，会很舒服的！"
	case ActionTrain:
		return "来学习一个新技能吧！"
	default:
		return ""
	}
}
