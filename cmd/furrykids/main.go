// Command furrykids runs a console chat session against the FurryKids
// backend: log in, talk to the pet, browse the feed. It wires the same
// stores the mobile client uses.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"furrykids/internal/config"
	"furrykids/internal/util"
	"furrykids/pkg/ai"
	"furrykids/pkg/domain"
	"furrykids/pkg/session"
	"furrykids/pkg/speech"
	"furrykids/pkg/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("FURRYKIDS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := util.InitLogger(cfg.LogLevel)

	client, err := session.New(cfg.BackendURL)
	if err != nil {
		util.Fatal("failed to init session client", "err", err)
	}

	authStore := store.NewAuthStore(client, logger)
	petStore := store.NewPetStore(nil, logger)
	feedStore := store.NewFeedStore(nil, logger)

	var generator ai.ReplyGenerator
	switch cfg.AIProvider {
	case config.ProviderOpenAI:
		generator = ai.NewOpenAIGenerator(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	default:
		generator = ai.NewLocalGenerator()
	}

	var history store.History = store.NopHistory{}
	if cfg.RedisAddr != "" {
		redisHistory, err := store.NewRedisHistory(store.RedisHistoryConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			MaxLen:   500,
		})
		if err != nil {
			util.Fatal("failed to init history archive", "err", err)
		}
		defer redisHistory.Close()
		history = redisHistory
	}

	pet := petStore.CurrentPet()
	if cfg.PetName != "" {
		pet.Name = cfg.PetName
	}
	if cfg.PetPersonality != "" {
		pet.Personality = strings.Split(cfg.PetPersonality, "、")
	}

	bridge := speech.NewBridge(consoleSynth{}, cfg.SpeechLocale, logger)
	conv := store.NewConversationStore(store.ConversationConfig{
		Generator: generator,
		Pet:       pet,
		Speaker:   bridge,
		History:   history,
		Logger:    logger,
	})

	// Print pet messages as they land.
	printed := 0
	conv.Subscribe(func() {
		snap := conv.Snapshot()
		for ; printed < len(snap.Messages); printed++ {
			msg := snap.Messages[printed]
			if msg.Origin == domain.OriginPet {
				mood := ""
				if msg.Mood != "" {
					mood = " [" + msg.Mood + "]"
				}
				fmt.Printf("%s %s%s\n", pet.Avatar, msg.Content, mood)
			}
		}
	})

	ctx := context.Background()
	bootstrap(ctx, client, authStore, logger)

	fmt.Printf("和%s聊天吧！命令: /login 用户名 密码, /register 用户名 密码, /logout, /feeds, /post 内容, /like 序号, /clear, /quit\n", pet.Name)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, line, authStore, feedStore, petStore, conv); quit {
				break
			}
			continue
		}
		conv.Send(ctx, line)
	}
	bridge.Stop()
}

// bootstrap probes backend health and the existing session concurrently.
func bootstrap(ctx context.Context, client *session.Client, authStore *store.AuthStore, logger *slog.Logger) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		health, err := client.HealthCheck(gctx)
		if err != nil {
			logger.Warn("backend health check failed", "err", err)
			return nil
		}
		logger.Info("backend health", "status", health["status"])
		return nil
	})
	g.Go(func() error {
		authStore.CheckStatus(gctx)
		return nil
	})
	_ = g.Wait()

	if snap := authStore.Snapshot(); snap.Authenticated {
		fmt.Printf("欢迎回来，%s！\n", snap.User.Username)
	}
}

func runCommand(ctx context.Context, line string, authStore *store.AuthStore, feedStore *store.FeedStore, petStore *store.PetStore, conv *store.ConversationStore) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit":
		return true
	case "/login", "/register":
		if len(fields) != 3 {
			fmt.Printf("用法: %s 用户名 密码\n", fields[0])
			return false
		}
		if fields[0] == "/login" {
			authStore.Login(ctx, fields[1], fields[2])
		} else {
			authStore.Register(ctx, fields[1], fields[2])
		}
		snap := authStore.Snapshot()
		if snap.ErrorMessage != "" {
			fmt.Println(snap.ErrorMessage)
		} else if snap.Authenticated {
			fmt.Printf("你好，%s！\n", snap.User.Username)
		}
	case "/logout":
		authStore.Logout(ctx)
		if snap := authStore.Snapshot(); snap.ErrorMessage != "" {
			fmt.Println(snap.ErrorMessage)
		} else {
			fmt.Println("已登出")
		}
	case "/feeds":
		for i, feed := range feedStore.Feeds() {
			fmt.Printf("%d. %s %s: %s (%d赞 %d评论, %s)\n",
				i+1, feed.PetAvatar, feed.PetName, feed.Content,
				feed.Likes, feed.Comments, store.RelativeTime(feed.CreatedAt))
		}
	case "/post":
		if len(fields) < 2 {
			fmt.Println("用法: /post 内容")
			return false
		}
		content := strings.TrimSpace(strings.TrimPrefix(line, "/post"))
		feedStore.AddFeed(content, nil, petStore.CurrentPet())
		petStore.AddExperience(10)
		fmt.Println("已发布！")
	case "/like":
		if len(fields) != 2 {
			fmt.Println("用法: /like 序号")
			return false
		}
		n, err := strconv.Atoi(fields[1])
		feeds := feedStore.Feeds()
		if err != nil || n < 1 || n > len(feeds) {
			fmt.Println("无效的序号")
			return false
		}
		if err := feedStore.Like(feeds[n-1].ID); err != nil {
			fmt.Println("点赞失败")
		}
	case "/clear":
		conv.Clear(ctx)
		fmt.Println("聊天记录已清空")
	default:
		fmt.Printf("未知命令: %s\n", fields[0])
	}
	return false
}

// consoleSynth "plays" utterances by printing them.
type consoleSynth struct{}

type consoleUtterance struct{}

func (consoleUtterance) Cancel() {}

func (consoleSynth) Voices() []speech.Voice {
	return []speech.Voice{{Name: "console", Locale: "zh-CN"}}
}

func (consoleSynth) Speak(text string, _ speech.Voice, done func()) (speech.Utterance, error) {
	fmt.Printf("🔊 %s\n", text)
	go done()
	return consoleUtterance{}, nil
}
