package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/curiohub/curiohub/internal/logger"
	"github.com/curiohub/curiohub/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Seeder handles database seeding operations
type Seeder struct {
	db           *gorm.DB
	passwordHash string
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// Counts sizes a seeding run.
type Counts struct {
	Users       int
	Submissions int
	Votes       int
	Bookmarks   int
}

// DevCounts fills a development database.
var DevCounts = Counts{Users: 40, Submissions: 150, Votes: 1200, Bookmarks: 300}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	return s.Seed(DevCounts)
}

// Seed creates random users, submissions, votes and bookmarks. Stored upvote
// totals are recounted from the vote rows afterwards.
func (s *Seeder) Seed(n Counts) error {
	logger.Log.Info("Creating users...")
	users, err := s.seedUsers(n.Users)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating submissions...")
	subs, err := s.seedSubmissions(users, n.Submissions)
	if err != nil {
		return fmt.Errorf("failed to seed submissions: %w", err)
	}

	logger.Log.Info("Creating votes...")
	if err := s.seedVotes(users, subs, n.Votes); err != nil {
		return fmt.Errorf("failed to seed votes: %w", err)
	}

	logger.Log.Info("Creating bookmarks...")
	if err := s.seedBookmarks(users, subs, n.Bookmarks); err != nil {
		return fmt.Errorf("failed to seed bookmarks: %w", err)
	}

	return s.syncUpvotes()
}

// TestUsers are the fixed accounts SeedTest creates.
var TestUsers = []struct {
	Username    string
	Email       string
	DisplayName string
}{
	{"alice", "alice@example.com", "Alice Smith"},
	{"bob", "bob@example.com", "Bob Johnson"},
	{"charlie", "charlie@example.com", "Charlie Brown"},
	{"diana", "diana@example.com", "Diana Prince"},
	{"eve", "eve@example.com", "Eve Wilson"},
}

// SeedTest seeds the test database with minimal data. Existing test users
// are reused; alice is an admin.
func (s *Seeder) SeedTest() error {
	var users []models.User
	for _, tu := range TestUsers {
		var user models.User
		err := s.db.Where("username = ?", tu.Username).First(&user).Error
		if err == nil {
			users = append(users, user)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		hash, err := s.hash()
		if err != nil {
			return err
		}
		user = models.User{
			Email:        tu.Email,
			Username:     tu.Username,
			DisplayName:  tu.DisplayName,
			PasswordHash: hash,
			AvatarURL:    avatarURL(tu.Username),
			IsAdmin:      tu.Username == "alice",
		}
		if err := s.db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create test user %s: %w", tu.Username, err)
		}
		users = append(users, user)
	}

	subs, err := s.seedSubmissions(users, 10)
	if err != nil {
		return fmt.Errorf("failed to seed submissions: %w", err)
	}
	if err := s.seedVotes(users, subs, 20); err != nil {
		return fmt.Errorf("failed to seed votes: %w", err)
	}
	if err := s.seedBookmarks(users, subs, 8); err != nil {
		return fmt.Errorf("failed to seed bookmarks: %w", err)
	}
	return s.syncUpvotes()
}

// Clean removes all seed data (use with caution!)
func (s *Seeder) Clean() error {
	// Delete in reverse order of dependencies
	for _, table := range []string{"bookmarks", "votes", "submission_tags", "submissions", "password_resets", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

// hash computes the shared password hash once per run.
func (s *Seeder) hash() (string, error) {
	if s.passwordHash == "" {
		h, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		s.passwordHash = string(h)
	}
	return s.passwordHash, nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	hash, err := s.hash()
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for len(users) < count {
		username := models.NormalizeUsername(gofakeit.Username())
		if !models.ValidUsername(username) {
			continue
		}
		user := models.User{
			Email:        username + "@example.com",
			Username:     username,
			DisplayName:  gofakeit.Name(),
			Bio:          gofakeit.HipsterSentence(),
			AvatarURL:    avatarURL(username),
			PasswordHash: hash,
		}
		result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to create user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			continue
		}
		users = append(users, user)
	}

	logger.Log.Info("Created seed users", zap.Int("count", len(users)))
	return users, nil
}

// seedSubmissions spreads submissions across users and sources. Roughly
// three in four are approved; the rest are split between pending and
// rejected so moderation has something to do.
func (s *Seeder) seedSubmissions(users []models.User, count int) ([]models.Submission, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to own submissions")
	}
	var tags []models.Tag
	if err := s.db.Find(&tags).Error; err != nil {
		return nil, err
	}

	subs := make([]models.Submission, 0, count)
	for i := 0; i < count; i++ {
		source := models.SourceTypes[rand.Intn(len(models.SourceTypes))]
		createdAt := gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now())
		sub := models.Submission{
			UserID:      users[rand.Intn(len(users))].ID,
			Title:       title(),
			URL:         sourceURL(source),
			Description: gofakeit.HipsterSentence(),
			SourceType:  source,
			Status:      randomStatus(),
			Tags:        pickTags(tags, rand.Intn(4)),
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		}
		if err := s.db.Omit("Tags.*").Create(&sub).Error; err != nil {
			return nil, fmt.Errorf("failed to create submission: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// seedVotes casts up to count votes on approved submissions, skipping pairs
// that already voted.
func (s *Seeder) seedVotes(users []models.User, subs []models.Submission, count int) error {
	approved := approvedOnly(subs)
	if len(approved) == 0 || len(users) == 0 {
		return nil
	}
	votes := make([]models.Vote, 0, count)
	seen := make(map[[2]string]bool, count)
	for attempts := 0; len(votes) < count && attempts < count*3; attempts++ {
		pair := [2]string{users[rand.Intn(len(users))].ID, popular(approved).ID}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		votes = append(votes, models.Vote{UserID: pair[0], SubmissionID: pair[1]})
	}
	if len(votes) == 0 {
		return nil
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&votes, 200).Error
}

func (s *Seeder) seedBookmarks(users []models.User, subs []models.Submission, count int) error {
	approved := approvedOnly(subs)
	if len(approved) == 0 || len(users) == 0 {
		return nil
	}
	marks := make([]models.Bookmark, 0, count)
	seen := make(map[[2]string]bool, count)
	for attempts := 0; len(marks) < count && attempts < count*3; attempts++ {
		pair := [2]string{users[rand.Intn(len(users))].ID, approved[rand.Intn(len(approved))].ID}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		marks = append(marks, models.Bookmark{UserID: pair[0], SubmissionID: pair[1]})
	}
	if len(marks) == 0 {
		return nil
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&marks, 200).Error
}

// syncUpvotes sets every stored total to its vote row count.
func (s *Seeder) syncUpvotes() error {
	err := s.db.Exec(`UPDATE submissions SET upvotes = (
		SELECT COUNT(*) FROM votes WHERE votes.submission_id = submissions.id
	)`).Error
	if err != nil {
		return fmt.Errorf("failed to sync upvotes: %w", err)
	}
	return nil
}

func approvedOnly(subs []models.Submission) []models.Submission {
	out := make([]models.Submission, 0, len(subs))
	for _, sub := range subs {
		if sub.Status == models.StatusApproved {
			out = append(out, sub)
		}
	}
	return out
}

// popular skews picks toward the front of the slice so a few submissions
// collect most of the votes.
func popular(subs []models.Submission) models.Submission {
	i := int(float64(len(subs)) * rand.Float64() * rand.Float64())
	return subs[i]
}

func randomStatus() models.Status {
	switch r := rand.Float64(); {
	case r < 0.75:
		return models.StatusApproved
	case r < 0.9:
		return models.StatusPending
	default:
		return models.StatusRejected
	}
}

func pickTags(tags []models.Tag, n int) []models.Tag {
	if n > len(tags) {
		n = len(tags)
	}
	picked := make([]models.Tag, 0, n)
	for _, i := range rand.Perm(len(tags))[:n] {
		picked = append(picked, tags[i])
	}
	return picked
}

func title() string {
	words := []string{gofakeit.Word(), gofakeit.Word()}
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return fmt.Sprintf("The %s of %s", words[0], words[1])
}

func sourceURL(source models.SourceType) string {
	id := strings.ReplaceAll(gofakeit.UUID(), "-", "")[:11]
	switch source {
	case models.SourceYouTube:
		return "https://www.youtube.com/watch?v=" + id
	case models.SourceInstagram:
		return "https://www.instagram.com/p/" + id + "/"
	case models.SourceReddit:
		return "https://www.reddit.com/r/" + gofakeit.Word() + "/comments/" + id
	case models.SourceTwitter:
		return "https://x.com/" + models.NormalizeUsername(gofakeit.Username()) + "/status/" + id
	default:
		return "https://" + gofakeit.Word() + ".example.com/" + id
	}
}

func avatarURL(username string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/png?seed=%s", username)
}
