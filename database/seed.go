package database

import (
	"context"
	"fmt"
	"log/slog"

	"anilog/internal/microservices/http-api/models"
	"anilog/internal/middleware/auth"

	"gorm.io/gorm"
)

// SamplePassword is the password of every seeded reviewer account.
const SamplePassword = "anilog-sample"

type sampleReview struct {
	author   string
	tier     string
	rating   float64
	oneLiner string
	content  string
}

type sampleAnime struct {
	title      string
	cover      string
	categories []string
	featured   bool
	review     sampleReview
}

var sampleCategories = []models.Category{
	{Name: "인기", Icon: "🔥", SortOrder: 1},
	{Name: "추천", Icon: "💎", SortOrder: 2},
	{Name: "클래식", Icon: "🏆", SortOrder: 3},
}

var sampleCatalog = []sampleAnime{
	{"장송의 프리렌", "https://cdn.myanimelist.net/images/anime/1015/138006.jpg", []string{"인기", "추천"}, true,
		sampleReview{"프리렌덕후", "SSS", 9.8, "여운이 오래 남는 작품, 인생 애니 등극", "정말 최고의 애니입니다. 스토리, 작화, 음악 모두 완벽합니다."}},
	{"SPY×FAMILY", "https://cdn.myanimelist.net/images/anime/1764/126627.jpg", []string{"인기", "추천"}, true,
		sampleReview{"아냐팬", "SS", 9.2, "가족 코미디의 정석, 아냐는 신이다", "온 가족이 함께 볼 수 있는 힐링 애니입니다."}},
	{"체인소 맨", "https://cdn.myanimelist.net/images/anime/1806/126216.jpg", []string{"인기"}, true,
		sampleReview{"MAPPA신자", "A", 8.7, "MAPPA 작화 미쳤고, 2기 기다리는 중", "액션신 퀄리티가 미쳤습니다."}},
	{"귀멸의 칼날", "https://cdn.myanimelist.net/images/anime/1286/99889.jpg", []string{"인기"}, false,
		sampleReview{"탄지로", "SS", 9.0, "작화 혁명의 시작", "UFOtable 작화 최고입니다."}},
	{"진격의 거인", "https://cdn.myanimelist.net/images/anime/1000/110531.jpg", []string{"인기", "클래식"}, false,
		sampleReview{"에렌예거", "SSS", 9.5, "스토리텔링의 교과서", "복선 회수가 미쳤습니다."}},
	{"바이올렛 에버가든", "https://cdn.myanimelist.net/images/anime/1935/127974.jpg", []string{"추천"}, false,
		sampleReview{"교애니팬", "SSS", 9.4, "눈물샘 터지는 감동 스토리", "매 화 울었습니다."}},
	{"슈타인즈 게이트", "https://cdn.myanimelist.net/images/anime/5/87048.jpg", []string{"추천", "클래식"}, false,
		sampleReview{"오카린", "SSS", 9.6, "이거 안 보면 인생 손해", "SF 걸작입니다. 타임루프물 최고봉이에요."}},
	{"카우보이 비밥", "https://cdn.myanimelist.net/images/anime/1314/108941.jpg", []string{"클래식"}, false,
		sampleReview{"스파이크", "SSS", 9.5, "애니메이션 역사의 한 페이지", "OST가 전설입니다."}},
	{"데스노트", "https://cdn.myanimelist.net/images/anime/9/9453.jpg", []string{"클래식"}, false,
		sampleReview{"라이토", "SS", 9.0, "심리전의 끝판왕", "두뇌 싸움 좋아하면 필수 시청!"}},
}

// Seed fills an empty catalog with sample anime, categories, featured cards
// and one review each. It does nothing once any anime exists.
func Seed(ctx context.Context, db *gorm.DB, log *slog.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Anime{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count anime: %w", err)
	}
	if count > 0 {
		log.Info("Catalog already populated, skipping seed", "anime", count)
		return nil
	}

	hash, err := auth.HashPassword(SamplePassword)
	if err != nil {
		return err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categoryIDs := make(map[string]int64, len(sampleCategories))
		for _, c := range sampleCategories {
			if err := tx.Create(&c).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", c.Name, err)
			}
			categoryIDs[c.Name] = c.ID
		}

		featuredOrder := 1
		for i, s := range sampleCatalog {
			cover := s.cover
			anime := models.Anime{Title: s.title, CoverImage: &cover}
			if err := tx.Omit("Series", "Categories").Create(&anime).Error; err != nil {
				return fmt.Errorf("seed anime %s: %w", s.title, err)
			}
			for _, name := range s.categories {
				link := models.AnimeCategory{AnimeID: anime.ID, CategoryID: categoryIDs[name]}
				if err := tx.Create(&link).Error; err != nil {
					return err
				}
			}
			if s.featured {
				f := models.Featured{AnimeID: anime.ID, SortOrder: featuredOrder}
				if err := tx.Omit("Anime").Create(&f).Error; err != nil {
					return err
				}
				featuredOrder++
			}

			user := models.User{
				Username: fmt.Sprintf("sample%02d", i+1),
				Password: hash,
				Nickname: s.review.author,
				Role:     models.RoleUser,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", user.Username, err)
			}
			rv := models.Review{
				AnimeID:  anime.ID,
				UserID:   user.ID,
				Tier:     s.review.tier,
				Rating:   s.review.rating,
				OneLiner: s.review.oneLiner,
				Content:  s.review.content,
			}
			if err := tx.Omit("Anime").Create(&rv).Error; err != nil {
				return fmt.Errorf("seed review for %s: %w", s.title, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("Sample data inserted", "anime", len(sampleCatalog), "categories", len(sampleCategories))
	return nil
}
