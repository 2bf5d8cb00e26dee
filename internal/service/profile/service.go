package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/oggyb/blinder/internal/app"
	"github.com/oggyb/blinder/internal/db"
	svcErr "github.com/oggyb/blinder/internal/errors"
	"github.com/oggyb/blinder/internal/repository"
)

const (
	// MinAge is the youngest age allowed to hold a profile.
	MinAge = 18

	birthdateLayout = "2006-01-02"
)

// Service implements profile reads/updates and account creation.
type Service struct {
	log          *slog.Logger
	users        *repository.UserRepository
	universities *repository.UniversityRepository
	now          func() time.Time
}

// NewProfileService creates a new Profile service with dependencies from AppContext.
func NewProfileService(appCtx *app.AppContext) *Service {
	return &Service{
		log:          appCtx.Logger,
		users:        appCtx.Repos.Users,
		universities: appCtx.Repos.Universities,
		now:          time.Now,
	}
}

// WithClock overrides the clock used for age checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Profile is the requester's own profile: the public projection plus private fields.
type Profile struct {
	db.PublicProfile
	Email            string `json:"email"`
	GenderPreference string `json:"gender_preference"`
	Locale           string `json:"locale"`
}

// ProfileUpdate carries every editable field. All of them are required.
type ProfileUpdate struct {
	Birthdate          string   `json:"birthdate"`
	University         string   `json:"university"`
	UniversityLocation string   `json:"university_location"`
	Gender             string   `json:"gender"`
	GenderPreference   string   `json:"gender_preference"`
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
	// ZodiacSign is derived from Birthdate and ignored on input.
	ZodiacSign string `json:"zodiac_sign"`
}

// NewUser is the input of CreateUser.
type NewUser struct {
	Email    string
	Name     string
	Password string
	Picture  string
	Locale   string
}

// UniversityGroup lists the universities of one location.
type UniversityGroup struct {
	Universities []string `json:"universities"`
	Location     string   `json:"location"`
}

// ListUniversities returns the campus catalog grouped by location, in
// location order. The location values are what university_location accepts.
func (s *Service) ListUniversities(ctx context.Context) ([]UniversityGroup, error) {
	rows, err := s.universities.ListUniversities(ctx)
	if err != nil {
		s.log.Error("ListUniversities failed", "err", err)
		return nil, svcErr.Map(err)
	}

	out := make([]UniversityGroup, 0)
	for _, u := range rows {
		if n := len(out); n > 0 && out[n-1].Location == u.Location {
			out[n-1].Universities = append(out[n-1].Universities, u.Name)
			continue
		}
		out = append(out, UniversityGroup{Universities: []string{u.Name}, Location: u.Location})
	}
	return out, nil
}

// GetProfile returns the requester's own profile.
func (s *Service) GetProfile(ctx context.Context, userID uint64) (*Profile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, svcErr.NotFound("user not found")
		}
		s.log.Error("FindByID failed", "user_id", userID, "err", err)
		return nil, svcErr.Map(err)
	}
	return &Profile{
		PublicProfile:    u.Public(),
		Email:            u.Email,
		GenderPreference: u.GenderPreference,
		Locale:           u.Locale,
	}, nil
}

// UpdateProfile validates and stores every editable field of userID's profile.
//
// Behavior:
//   - Every field is required; lists must be non-empty.
//   - birthdate is YYYY-MM-DD and the user must be at least MinAge.
//   - The zodiac sign is derived from the birthdate.
//
// Example:
//
//	svc.UpdateProfile(ctx, 1, profile.ProfileUpdate{Birthdate: "2000-05-01", ...})
func (s *Service) UpdateProfile(ctx context.Context, userID uint64, in ProfileUpdate) (*ProfileUpdate, error) {
	if err := validateRequired(in); err != nil {
		return nil, err
	}

	birth, err := time.Parse(birthdateLayout, in.Birthdate)
	if err != nil {
		return nil, svcErr.InvalidArgument("birthdate must be formatted as YYYY-MM-DD")
	}
	if Age(birth, s.now()) < MinAge {
		return nil, svcErr.InvalidArgument(fmt.Sprintf("users under %d cannot register", MinAge))
	}

	gender, pref, err := normalizeGenders(in.Gender, in.GenderPreference)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, svcErr.NotFound("user not found")
		}
		return nil, svcErr.Map(err)
	}

	out := in
	out.Birthdate = birth.Format(birthdateLayout)
	out.ZodiacSign = ZodiacSign(birth)
	out.Gender = gender
	out.GenderPreference = pref

	err = s.users.UpdateProfile(ctx, userID, &db.User{
		University:         out.University,
		UniversityLocation: out.UniversityLocation,
		Birthdate:          out.Birthdate,
		ZodiacSign:         out.ZodiacSign,
		Gender:             out.Gender,
		GenderPreference:   out.GenderPreference,
		Height:             out.Height,
		RelationshipGoal:   out.RelationshipGoal,
		Likes:              out.Likes,
		Values:             out.Values,
		Alcohol:            out.Alcohol,
		Smoking:            out.Smoking,
		Religion:           out.Religion,
		PoliticalView:      out.PoliticalView,
		FavoriteFood:       out.FavoriteFood,
		About:              out.About,
	})
	if err != nil {
		s.log.Error("UpdateProfile failed", "user_id", userID, "err", err)
		return nil, svcErr.Map(err)
	}

	s.log.Info("profile updated", "user_id", userID)
	return &out, nil
}

// CreateUser registers an account with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (*db.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, svcErr.InvalidArgument("a valid email is required")
	}
	if len(in.Password) < 6 {
		return nil, svcErr.InvalidArgument("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, svcErr.Internal("failed to hash password")
	}

	u := &db.User{
		Email:        email,
		Name:         in.Name,
		Picture:      in.Picture,
		Locale:       in.Locale,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, svcErr.AlreadyExists("email already registered")
		}
		s.log.Error("CreateUser failed", "err", err)
		return nil, svcErr.Map(err)
	}
	return u, nil
}

func validateRequired(in ProfileUpdate) error {
	fields := []struct {
		name string
		ok   bool
	}{
		{"birthdate", strings.TrimSpace(in.Birthdate) != ""},
		{"university", strings.TrimSpace(in.University) != ""},
		{"university_location", strings.TrimSpace(in.UniversityLocation) != ""},
		{"gender", strings.TrimSpace(in.Gender) != ""},
		{"gender_preference", strings.TrimSpace(in.GenderPreference) != ""},
		{"height", in.Height > 0},
		{"relationship_goal", strings.TrimSpace(in.RelationshipGoal) != ""},
		{"likes", len(in.Likes) > 0},
		{"values", len(in.Values) > 0},
		{"alcohol", strings.TrimSpace(in.Alcohol) != ""},
		{"smoking", strings.TrimSpace(in.Smoking) != ""},
		{"religion", strings.TrimSpace(in.Religion) != ""},
		{"political_view", strings.TrimSpace(in.PoliticalView) != ""},
		{"favorite_food", len(in.FavoriteFood) > 0},
		{"about", strings.TrimSpace(in.About) != ""},
	}
	for _, f := range fields {
		if !f.ok {
			return svcErr.InvalidArgument(f.name + " is required and cannot be empty")
		}
	}
	return nil
}

func normalizeGenders(gender, pref string) (string, string, error) {
	gender = db.NormalizeGender(gender)
	if gender != db.GenderMale && gender != db.GenderFemale {
		return "", "", svcErr.InvalidArgument("gender must be Erkek or Kadın")
	}

	pref = db.NormalizeGender(pref)
	switch pref {
	case db.GenderMale, db.GenderFemale, db.PreferenceEither:
	default:
		return "", "", svcErr.InvalidArgument("gender_preference must be Erkek, Kadın or İkisi de")
	}
	return gender, pref, nil
}
