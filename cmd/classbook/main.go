package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"classbook/internal/cache"
	"classbook/internal/config"
	"classbook/internal/container"
	"classbook/internal/dateutil"
	"classbook/internal/keyvalue"
	"classbook/internal/log"
	"classbook/internal/metrics"
	"classbook/internal/models"
	"classbook/internal/store"
)

const usage = `usage: classbook <command> [args]

commands:
  login <email>        authenticate and persist the session
  logout               clear the stored session
  whoami               show the logged-in user
  day <yyyy-mm-dd>     list the schedules of one day
  month <mm>           list this user's schedules for a month
  create <title> <yyyy-mm-dd> <hh:mm> <roomId>
                       book a class
  cancel <id> [reason] cancel a schedule
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := log.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}

	sessions, err := store.NewSessionStore(ctx, backend, logger)
	if err != nil {
		return err
	}

	appCache := cache.NewTTL()
	janitor := cache.NewJanitor([]*cache.TTLCache{appCache}, logger)
	if err := janitor.Start(); err != nil {
		return err
	}
	defer janitor.Stop()

	collector := metrics.NewCollector(prometheus.NewRegistry())
	c := container.New(cfg, logger, sessions, appCache, collector)

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	switch args[0] {
	case "login":
		return cmdLogin(ctx, c, args[1:])
	case "logout":
		resp := c.AuthService().Logout(ctx)
		return report(resp.Success, resp.Message, resp.Error)
	case "whoami":
		return cmdWhoami(ctx, c)
	case "day":
		return cmdDay(ctx, c, args[1:])
	case "month":
		return cmdMonth(ctx, c, args[1:])
	case "create":
		return cmdCreate(ctx, c, args[1:])
	case "cancel":
		return cmdCancel(ctx, c, args[1:])
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func openBackend(ctx context.Context, cfg *config.AppConfig) (keyvalue.Store, error) {
	if cfg.Redis.Enabled {
		return keyvalue.NewRedis(ctx, keyvalue.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	}
	if cfg.State.Passphrase != "" {
		return keyvalue.NewFile(cfg.State.FilePath, cfg.State.Passphrase)
	}
	return keyvalue.NewMemory(), nil
}

func cmdLogin(ctx context.Context, c *container.Container, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("login needs an email")
	}

	fmt.Fprint(os.Stderr, "password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	resp := c.AuthService().Login(ctx, models.LoginCredentials{
		Email:    args[0],
		Password: strings.TrimRight(line, "\r\n"),
	})
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}

	fmt.Printf("logged in as %s (%s)\n", resp.Data.User.Name, resp.Data.User.Role)
	return nil
}

func cmdWhoami(ctx context.Context, c *container.Container) error {
	auth := c.AuthService()
	if !auth.SessionValid() {
		return fmt.Errorf("not logged in")
	}

	session := auth.CurrentSession()
	resp := auth.GetCurrentUser(ctx, session.Token)
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}

	user := resp.Data
	fmt.Printf("%s <%s> role=%s\n", user.Name, user.Email, user.Role)
	return nil
}

func cmdDay(ctx context.Context, c *container.Container, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("day needs a date (yyyy-mm-dd)")
	}

	token, err := requireToken(c)
	if err != nil {
		return err
	}

	resp := c.ScheduleService().GetSchedulesByDate(ctx, args[0], token)
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}

	printSchedules(resp.Data)
	return nil
}

func cmdMonth(ctx context.Context, c *container.Container, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("month needs a month number (1-12)")
	}

	auth := c.AuthService()
	token, err := requireToken(c)
	if err != nil {
		return err
	}
	sess := auth.CurrentSession()
	user := sess.User()
	if user == nil {
		return fmt.Errorf("not logged in")
	}

	resp := c.ScheduleService().GetSchedulesByMonth(ctx, args[0], user.ID, token)
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}

	printSchedules(resp.Data)
	return nil
}

func cmdCreate(ctx context.Context, c *container.Container, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("create needs <title> <yyyy-mm-dd> <hh:mm> <roomId>")
	}

	roomID, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("roomId must be a number")
	}

	auth := c.AuthService()
	token, err := requireToken(c)
	if err != nil {
		return err
	}
	sess := auth.CurrentSession()
	user := sess.User()
	if user == nil {
		return fmt.Errorf("not logged in")
	}

	resp := c.ScheduleService().CreateSchedule(ctx, models.CreateScheduleData{
		Title:  args[0],
		Date:   args[1],
		Time:   args[2],
		RoomID: roomID,
		UserID: user.ID,
	}, token)
	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}

	fmt.Printf("created schedule #%d on %s at %s\n", resp.Data.ID, dateutil.FormatDisplay(resp.Data.Date), resp.Data.TimeStart)
	return nil
}

func cmdCancel(ctx context.Context, c *container.Container, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("cancel needs a schedule id")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("schedule id must be a number")
	}
	reason := strings.Join(args[1:], " ")

	token, err := requireToken(c)
	if err != nil {
		return err
	}

	resp := c.ScheduleService().CancelSchedule(ctx, id, reason, token)
	return report(resp.Success, resp.Message, resp.Error)
}

func requireToken(c *container.Container) (string, error) {
	auth := c.AuthService()
	if !auth.SessionValid() {
		return "", fmt.Errorf("not logged in, run: classbook login <email>")
	}
	return auth.CurrentSession().Token, nil
}

func printSchedules(schedules []models.Schedule) {
	if len(schedules) == 0 {
		fmt.Println("no schedules")
		return
	}
	for _, s := range schedules {
		start := s.StartsAt()
		day := s.Date
		if !start.IsZero() {
			day = start.Format("02/01/2006")
		}
		fmt.Printf("#%-4d %s %s  %-10s %s\n", s.ID, day, s.TimeStart, s.Status, s.Theme)
	}
}

func report(success bool, message, errMessage string) error {
	if !success {
		return fmt.Errorf("%s", errMessage)
	}
	if message != "" {
		fmt.Println(message)
	}
	return nil
}
