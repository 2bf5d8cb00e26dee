package db

import (
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedLocations = []string{"İstanbul", "Ankara"}

var seedUniversities = []University{
	{Name: "Boğaziçi Üniversitesi", Location: "İstanbul"},
	{Name: "İstanbul Teknik Üniversitesi", Location: "İstanbul"},
	{Name: "Orta Doğu Teknik Üniversitesi", Location: "Ankara"},
	{Name: "Bilkent Üniversitesi", Location: "Ankara"},
}

// SeedTestData resets the database and populates it with demo users, swipes,
// matches and messages.
//
// Behavior:
//  1. Clears existing data in `messages`, `matches`, `swipes`, `users` and `universities`.
//  2. Seeds the university catalog, then creates 20 users (10 Erkek, 10 Kadın) split across two university locations.
//  3. Generates ~200 swipes with ~70% likes; every 3rd pair is forced mutual and gets a match.
//  4. Each match receives a short opening message.
//
// Compatible with MySQL, Postgres and SQLite.
func SeedTestData(db *gorm.DB) error {
	faker := gofakeit.New(time.Now().UnixNano())

	if err := clearAll(db); err != nil {
		return err
	}
	log.Println("Cleared existing data")

	universities := append([]University(nil), seedUniversities...)
	if err := db.Create(&universities).Error; err != nil {
		return fmt.Errorf("failed to seed universities: %w", err)
	}
	byLocation := make(map[string][]string, len(seedLocations))
	for _, u := range universities {
		byLocation[u.Location] = append(byLocation[u.Location], u.Name)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// --- Seed Users ---
	users := make([]User, 0, 20)
	for i := 1; i <= 20; i++ {
		gender := GenderMale
		preference := GenderFemale
		if i > 10 {
			gender = GenderFemale
			preference = GenderMale
		}
		if i%5 == 0 {
			preference = PreferenceEither
		}

		location := seedLocations[i%len(seedLocations)]
		birth := faker.DateRange(time.Now().AddDate(-30, 0, 0), time.Now().AddDate(-18, 0, -1))
		user := User{
			Email:              fmt.Sprintf("user%d@example.edu.tr", i),
			Name:               faker.Name(),
			Picture:            fmt.Sprintf("https://picsum.photos/seed/%d/400/400", i),
			Locale:             "tr",
			PasswordHash:       string(hash),
			University:         faker.RandomString(byLocation[location]),
			UniversityLocation: location,
			Birthdate:          birth.Format("2006-01-02"),
			Gender:             gender,
			GenderPreference:   preference,
			Height:             faker.Number(155, 195),
			RelationshipGoal:   faker.RandomString([]string{"Ciddi ilişki", "Arkadaşlık", "Henüz emin değilim"}),
			Likes:              []string{faker.Hobby(), faker.Hobby()},
			Values:             []string{faker.Word()},
			Alcohol:            faker.RandomString([]string{"Evet", "Hayır", "Bazen"}),
			Smoking:            faker.RandomString([]string{"Evet", "Hayır"}),
			Religion:           faker.RandomString([]string{"Belirtmek istemiyorum", "İnançlı", "İnançsız"}),
			PoliticalView:      faker.RandomString([]string{"Sol", "Sağ", "Merkez", "Apolitik"}),
			FavoriteFood:       []string{faker.Dinner()},
			About:              faker.Sentence(12),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, user)
	}
	log.Println("Seeded 20 users.")

	// --- Seed Swipes + Matches ---
	counter := 0
	for _, actor := range users {
		for j := 0; j < 12; j++ {
			target := users[faker.Number(0, len(users)-1)]
			if actor.ID == target.ID || actor.Gender == target.Gender {
				continue
			}

			action := ActionDislike
			if faker.Number(0, 99) < 70 {
				action = ActionLike
			}

			mutual := counter%3 == 0
			if mutual {
				action = ActionLike
				if err := upsertSwipe(db, target.ID, actor.ID, ActionLike); err != nil {
					return err
				}
			}
			if err := upsertSwipe(db, actor.ID, target.ID, action); err != nil {
				return err
			}

			if mutual {
				if err := seedMatch(db, faker, actor.ID, target.ID); err != nil {
					return err
				}
			}
			counter++
		}
	}

	return nil
}

// SeedMinimalTestData wipes the DB and inserts a small deterministic dataset.
//
// Dataset (all in location "X"):
//   - universities "Uni A" and "Uni B" in X, "Uni C" in Y
//   - user1 Erkek, prefers either
//   - user2 Kadın, prefers Erkek
//   - user3 Kadın, prefers Erkek
//   - user4 Erkek in location "Y"
//   - Swipes: user3 → user1 like, user1 → user3 dislike
func SeedMinimalTestData(db *gorm.DB) error {
	if err := clearAll(db); err != nil {
		return err
	}

	universities := []University{
		{Name: "Uni A", Location: "X"},
		{Name: "Uni B", Location: "X"},
		{Name: "Uni C", Location: "Y"},
	}
	if err := db.Create(&universities).Error; err != nil {
		return err
	}

	users := []User{
		{ID: 1, Email: "u1@test.edu", Name: "user1", Gender: GenderMale, GenderPreference: PreferenceEither, UniversityLocation: "X"},
		{ID: 2, Email: "u2@test.edu", Name: "user2", Gender: GenderFemale, GenderPreference: GenderMale, UniversityLocation: "X"},
		{ID: 3, Email: "u3@test.edu", Name: "user3", Gender: GenderFemale, GenderPreference: GenderMale, UniversityLocation: "X"},
		{ID: 4, Email: "u4@test.edu", Name: "user4", Gender: GenderMale, GenderPreference: GenderFemale, UniversityLocation: "Y"},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	swipes := []Swipe{
		{SwiperID: 3, SwipeeID: 1, Action: ActionLike},
		{SwiperID: 1, SwipeeID: 3, Action: ActionDislike},
	}
	return db.Create(&swipes).Error
}

func clearAll(db *gorm.DB) error {
	for _, table := range []string{"messages", "matches", "swipes", "users", "universities"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences where the dialect supports it.
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE messages AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE universities AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('users', 'messages', 'universities')")
	}
	return nil
}

func upsertSwipe(db *gorm.DB, swiper, swipee uint64, action string) error {
	s := Swipe{SwiperID: swiper, SwipeeID: swipee, Action: action}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "swiper_id"}, {Name: "swipee_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"action", "reason", "updated_at"}),
	}).Create(&s).Error
	if err != nil {
		return fmt.Errorf("failed to seed swipe: %w", err)
	}
	return nil
}

func seedMatch(db *gorm.DB, faker *gofakeit.Faker, a, b uint64) error {
	m := Match{ID: uuid.NewString(), User1ID: a, User2ID: b, PairKey: PairKey(a, b), MatchedAt: NowFunc()}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pair_key"}},
		DoNothing: true,
	}).Create(&m)
	if res.Error != nil {
		return fmt.Errorf("failed to seed match: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil
	}

	msg := Message{MatchID: m.ID, SenderID: a, Text: faker.Sentence(6)}
	if err := db.Create(&msg).Error; err != nil {
		return fmt.Errorf("failed to seed message: %w", err)
	}
	return nil
}
