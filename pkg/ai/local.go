package ai

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"furrykids/pkg/domain"
)

// category is one keyword-matched reply bucket. Categories are tested in
// a fixed priority order; the first match wins.
type category struct {
	name     string
	keywords []string
	phrases  []string
}

var localCategories = []category{
	{
		name:     "greeting",
		keywords: []string{"你好", "嗨", "hi", "hello"},
		phrases: []string{
			"主人好！今天心情怎么样？",
			"嗨～想我了吗？",
			"你好呀！我正想你呢！",
			"你好呀！我是你的小伙伴，很高兴和你聊天！",
		},
	},
	{
		name:     "hunger",
		keywords: []string{"吃", "饿"},
		phrases: []string{
			"我也饿了！想要小零食～",
			"可以给我一些好吃的吗？",
			"肚子咕咕叫了呢！",
		},
	},
	{
		name:     "play",
		keywords: []string{"玩", "游戏"},
		phrases: []string{
			"好耶！我们来玩吧！",
			"我最喜欢和主人玩了！",
			"想玩球球！汪汪！",
		},
	},
	{
		name:     "fatigue",
		keywords: []string{"累", "困", "睡"},
		phrases: []string{
			"我也有点困了呢～",
			"要不我们一起休息一会？",
			"好想睡个懒觉～",
		},
	},
	{
		name:     "affection",
		keywords: []string{"爱", "喜欢"},
		phrases: []string{
			"我也超级喜欢你！",
			"主人最好了～",
			"我爱你！汪汪！",
		},
	},
	{
		name:     "walk",
		keywords: []string{"散步", "走"},
		phrases: []string{
			"出去散步！我最喜欢出门了，可以看到好多新鲜的东西！",
			"我们去散步吧！外面的世界很精彩！",
		},
	},
	{
		name:     "bath",
		keywords: []string{"洗澡"},
		phrases: []string{
			"洗澡澡～虽然有点紧张，但是洗完会很香呢！",
			"好吧，洗完澡我会变得香香的！",
		},
	},
	{
		name:     "training",
		keywords: []string{"学习", "训练"},
		phrases: []string{
			"好的！我会认真学习的，做一个聪明的好宝宝！",
			"我会努力变聪明的！",
		},
	},
}

var defaultPhrases = []string{
	"真的吗？告诉我更多吧！",
	"这听起来很有趣呢～",
	"我在认真听主人说话哦！",
	"然后呢？我想知道更多！",
	"主人说的话我都记在心里了～",
	"汪汪！（我很感兴趣！）",
}

// LocalGenerator answers from a fixed phrase table with random selection.
// It never fails and needs no network.
type LocalGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// LocalOption customizes a LocalGenerator.
type LocalOption func(*LocalGenerator)

// WithRand pins the random source so tests can make selection deterministic.
func WithRand(rng *rand.Rand) LocalOption {
	return func(g *LocalGenerator) { g.rng = rng }
}

// NewLocalGenerator builds the heuristic reply strategy.
func NewLocalGenerator(opts ...LocalOption) *LocalGenerator {
	g := &LocalGenerator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate implements ReplyGenerator. History, pet name and personality are
// accepted for interface parity; the table keys off the message alone.
func (g *LocalGenerator) Generate(_ context.Context, message string, _ []domain.Message, _, _ string) (Reply, error) {
	lower := strings.ToLower(message)
	phrases := defaultPhrases
	for _, cat := range localCategories {
		if containsAny(lower, cat.keywords) {
			phrases = cat.phrases
			break
		}
	}
	text := phrases[g.intn(len(phrases))]
	return Reply{
		Text:    text,
		Mood:    DeriveMood(text),
		Actions: SuggestActions(message),
	}, nil
}

func (g *LocalGenerator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// SuggestActions maps the user's message to physical actions the pet
// avatar can animate.
func SuggestActions(message string) []string {
	var actions []string
	if strings.Contains(message, "玩") {
		actions = append(actions, "摇尾巴", "跳跃")
	}
	if strings.Contains(message, "吃") || strings.Contains(message, "饿") {
		actions = append(actions, "舔嘴唇", "看向食物")
	}
	if strings.Contains(message, "睡") || strings.Contains(message, "累") {
		actions = append(actions, "打哈欠", "趴下")
	}
	return actions
}
