package domain

import (
	"time"

	"github.com/google/uuid"
)

// SamplePets seeds the demo pet store with the same profiles the app ships.
func SamplePets() []Pet {
	return []Pet{
		{
			ID:            uuid.New(),
			Name:          "Buddy",
			Avatar:        "🐶",
			Breed:         "柴犬",
			Age:           2,
			Personality:   []string{"活泼", "好奇", "友善"},
			Signature:     "我是一只可爱的柴犬，喜欢玩球和晒太阳！",
			Mood:          "开心",
			Status:        StatusOnline,
			Level:         5,
			Experience:    75,
			ExperienceCap: 100,
		},
		{
			ID:            uuid.New(),
			Name:          "Kitty",
			Avatar:        "🐱",
			Breed:         "英短猫",
			Age:           3,
			Personality:   []string{"安静", "傲娇", "好奇"},
			Signature:     "我是一只优雅的猫咪，喜欢晒太阳和玩毛线球~",
			Mood:          "慵懒",
			Status:        StatusOnline,
			Level:         4,
			Experience:    50,
			ExperienceCap: 100,
		},
		{
			ID:            uuid.New(),
			Name:          "Bunny",
			Avatar:        "🐰",
			Breed:         "荷兰垂耳兔",
			Age:           1,
			Personality:   []string{"胆小", "可爱", "爱吃"},
			Signature:     "我是一只小兔子，喜欢吃胡萝卜和生菜！",
			Mood:          "开心",
			Status:        StatusOnline,
			Level:         3,
			Experience:    30,
			ExperienceCap: 100,
		},
	}
}

// SampleFeeds seeds the demo feed store.
func SampleFeeds() []Feed {
	now := time.Now()
	return []Feed{
		{
			ID:        uuid.New(),
			PetID:     uuid.New(),
			PetName:   "Buddy",
			PetAvatar: "🐶",
			Content:   "今天和主人去公园玩了，好开心！🌳🏃‍♂️",
			Images:    []string{"park_image1"},
			Likes:     42,
			Comments:  12,
			Mood:      "开心",
			Topics:    []string{"户外活动", "遛狗"},
			CreatedAt: now.Add(-1 * time.Hour),
		},
		{
			ID:        uuid.New(),
			PetID:     uuid.New(),
			PetName:   "Kitty",
			PetAvatar: "🐱",
			Content:   "窗边晒太阳真舒服，这是我的最爱！☀️😌",
			Images:    []string{"sunbath_image"},
			Likes:     35,
			Comments:  8,
			Mood:      "慵懒",
			Topics:    []string{"晒太阳", "休闲"},
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID:        uuid.New(),
			PetID:     uuid.New(),
			PetName:   "Fluffy",
			PetAvatar: "🐰",
			Content:   "刚刚吃了超级好吃的胡萝卜！🥕 我的最爱！",
			Images:    []string{"carrot_image"},
			Likes:     28,
			Comments:  5,
			Mood:      "满足",
			Topics:    []string{"美食", "零食"},
			CreatedAt: now.Add(-3 * time.Hour),
		},
	}
}
