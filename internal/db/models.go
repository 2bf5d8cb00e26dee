package db

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Gender and preference values as stored by the mobile client.
const (
	GenderMale   = "Erkek"
	GenderFemale = "Kadın"

	PreferenceEither      = "İkisi de"
	PreferenceEitherAlias = "either"

	GenderMaleAlias   = "male"
	GenderFemaleAlias = "female"
)

// NormalizeGender maps the English aliases (male, female, either) to the
// stored values. Anything else is returned trimmed and unchanged.
func NormalizeGender(v string) string {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case GenderMaleAlias:
		return GenderMale
	case GenderFemaleAlias:
		return GenderFemale
	case PreferenceEitherAlias:
		return PreferenceEither
	}
	return v
}

// Swipe actions and reasons.
const (
	ActionLike    = "like"
	ActionDislike = "dislike"

	ReasonUnmatch = "unmatch"
)

// ValidAction reports whether a is a recognised swipe action.
func ValidAction(a string) bool {
	return a == ActionLike || a == ActionDislike
}

// User table
type User struct {
	ID                 uint64 `gorm:"primaryKey;autoIncrement"`
	Email              string `gorm:"uniqueIndex;size:128;not null"`
	Name               string `gorm:"size:128"`
	Picture            string `gorm:"size:512"`
	Locale             string `gorm:"size:8"`
	PasswordHash       string `gorm:"size:255"`
	University         string `gorm:"size:128"`
	UniversityLocation string `gorm:"size:64;index:idx_users_location_gender,priority:1"`
	Birthdate          string `gorm:"size:10"`
	ZodiacSign         string `gorm:"size:16"`
	Gender             string `gorm:"size:16;index:idx_users_location_gender,priority:2"`
	GenderPreference   string `gorm:"size:16"`
	Height             int
	RelationshipGoal   string    `gorm:"size:64"`
	Likes              []string  `gorm:"type:text;serializer:json"`
	Values             []string  `gorm:"column:personal_values;type:text;serializer:json"`
	Alcohol            string    `gorm:"size:32"`
	Smoking            string    `gorm:"size:32"`
	Religion           string    `gorm:"size:64"`
	PoliticalView      string    `gorm:"size:64"`
	FavoriteFood       []string  `gorm:"type:text;serializer:json"`
	About              string    `gorm:"type:text"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

// PublicProfile is the subset of a user that other users may see.
// It never carries the email or password hash.
type PublicProfile struct {
	UserID             string   `json:"user_id"`
	Name               string   `json:"name"`
	University         string   `json:"university"`
	UniversityLocation string   `json:"university_location"`
	Birthdate          string   `json:"birthdate"`
	ZodiacSign         string   `json:"zodiac_sign"`
	Gender             string   `json:"gender"`
	Height             int      `json:"height"`
	RelationshipGoal   string   `json:"relationship_goal"`
	Likes              []string `json:"likes"`
	Values             []string `json:"values"`
	Alcohol            string   `json:"alcohol"`
	Smoking            string   `json:"smoking"`
	Religion           string   `json:"religion"`
	PoliticalView      string   `json:"political_view"`
	FavoriteFood       []string `json:"favorite_food"`
	About              string   `json:"about"`
	Picture            string   `json:"picture"`
}

// Public projects the user to its public-safe fields.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		UserID:             strconv.FormatUint(u.ID, 10),
		Name:               u.Name,
		University:         u.University,
		UniversityLocation: u.UniversityLocation,
		Birthdate:          u.Birthdate,
		ZodiacSign:         u.ZodiacSign,
		Gender:             u.Gender,
		Height:             u.Height,
		RelationshipGoal:   u.RelationshipGoal,
		Likes:              nonNil(u.Likes),
		Values:             nonNil(u.Values),
		Alcohol:            u.Alcohol,
		Smoking:            u.Smoking,
		Religion:           u.Religion,
		PoliticalView:      u.PoliticalView,
		FavoriteFood:       nonNil(u.FavoriteFood),
		About:              u.About,
		Picture:            u.Picture,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Swipe is a directed like/dislike decision.
//
// Composite PK: (SwiperID, SwipeeID)
//   - Ensures a single current decision per ordered pair (upsert, most recent wins).
//
// Indexes:
//   - idx_swipee_action_updated(swipee_id, action, updated_at DESC)
//     Serves "who liked me" lists with cursor pagination.
//
// Fields:
//   - Action: like | dislike.
//   - Reason: empty, or "unmatch" when written by the unmatch compensation.
//   - UpdatedAt: time of the most recent decision for the pair.
type Swipe struct {
	SwiperID  uint64    `gorm:"primaryKey"`
	SwipeeID  uint64    `gorm:"primaryKey;index:idx_swipee_action_updated,priority:1"`
	Action    string    `gorm:"size:8;not null;index:idx_swipee_action_updated,priority:2"`
	Reason    string    `gorm:"size:16"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index:idx_swipee_action_updated,priority:3,sort:desc"`
}

// Match is an undirected mutual-like relationship.
// User1/User2 carry no ordering guarantee; PairKey is the canonical
// unordered key and is unique, so a pair can only ever hold one row.
type Match struct {
	ID        string    `gorm:"primaryKey;size:36"`
	User1ID   uint64    `gorm:"not null;index"`
	User2ID   uint64    `gorm:"not null;index"`
	PairKey   string    `gorm:"size:48;not null;uniqueIndex"`
	MatchedAt time.Time `gorm:"not null"`
}

// PairKey encodes two user ids independent of their order.
func PairKey(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// HasUser reports whether userID is one of the two parties.
func (m *Match) HasUser(userID uint64) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// Other returns the counterpart of userID, or false if userID is not a party.
func (m *Match) Other(userID uint64) (uint64, bool) {
	switch userID {
	case m.User1ID:
		return m.User2ID, true
	case m.User2ID:
		return m.User1ID, true
	}
	return 0, false
}

// Message belongs to exactly one match and is immutable once written.
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	MatchID   string    `gorm:"size:36;not null;index:idx_messages_match_created,priority:1"`
	SenderID  uint64    `gorm:"not null"`
	Text      string    `gorm:"column:message_text;type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_messages_match_created,priority:2"`
}

// University is a selectable campus. Location is the value copied into
// User.UniversityLocation, which the candidate feed filters on.
type University struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"size:128;not null;uniqueIndex"`
	Location string `gorm:"size:64;not null;index"`
}

// Models lists every table managed by AutoMigrate.
func Models() []any {
	return []any{&User{}, &Swipe{}, &Match{}, &Message{}, &University{}}
}
