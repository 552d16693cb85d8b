package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/matchdeck/internal/careerapi"
	"github.com/spigell/matchdeck/internal/deck"
	"github.com/spigell/matchdeck/internal/filtering"
	"github.com/spigell/matchdeck/internal/identity"
	"github.com/spigell/matchdeck/internal/logger"
	"github.com/spigell/matchdeck/internal/secrets"
	"github.com/spigell/matchdeck/internal/tracking"
	"github.com/spigell/matchdeck/internal/view"
)

const (
	PromptApply               = "Apply →"
	PromptPass                = "← Pass"
	PromptSave                = "Save"
	PromptDetails             = "Details"
	PromptGesture             = "Gesture (drag offset or key)"
	PromptFilters             = "Filters"
	PromptRefresh             = "Refresh"
	PromptHiddenGems          = "Hidden gems"
	PromptReportByCompany     = "Report by company"
	PromptMatchesToFile       = "Dump matches to file"
	PromptAppendToExcludeFile = "Append dismissed matches to exclude file"
	PromptQuit                = "Quit"
	PromptBack                = "back"

	analyticsPath = "/api/analytics"
	tokenAccount  = "api-token"
	closeTimeout  = 2 * time.Second
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Browse your job matches",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("script", "s", "", "replay gestures from a YAML file instead of prompting")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with matches to exclude. Default is unset.")
	runCmd.Flags().StringP("user", "u", "", "user id to load matches for")

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("user.id", runCmd.Flags().Lookup("user"))
}

// browser holds everything the interactive loop works with.
type browser struct {
	ctx      context.Context
	logger   *zap.Logger
	config   *Config
	userID   string
	loader   *deck.Loader
	session  *deck.Session
	renderer *view.Renderer

	hiddenGems *careerapi.Matches
	// empty is set when the last load produced no list at all.
	empty *view.EmptyState
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	config, err := getConfig()
	if err != nil {
		log.Fatalf("getting a config: %s", err)
	}

	logger, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
		File:  config.LogFile,
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	logger.Info("starting the matchdeck", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	token, err := resolveToken(config)
	if err != nil {
		logger.Fatal(
			"loading api token",
			zap.Error(err),
			zap.String("hint", "set MATCHDECK_TOKEN_FILE environment variable, the 'api.token-file' key in the configuration file or run 'matchdeck token set'"),
		)
	}

	userID, err := resolveUser(ctx, config, logger)
	if err != nil {
		logger.Fatal(
			"resolving user id",
			zap.Error(err),
			zap.String("hint", "pass --user, set MATCHDECK_USER_ID or the 'user.id' key in the configuration file"),
		)
	}

	if err := browse(ctx, config, logger, token, userID, cmd.Flag("script").Value.String()); err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}
}

// browse owns the api client, the analytics sink and the loader. It returns
// instead of exiting so the sink is drained and the loader stopped first.
func browse(ctx context.Context, config *Config, logger *zap.Logger, token, userID, script string) error {
	client := careerapi.New(logger, token)
	client.APIURL = strings.TrimRight(config.API.URL, "/")
	if config.API.UserAgent != "" {
		client.UserAgent = config.API.UserAgent
	}

	sink, closeSink := newSink(config, client.UserAgent, logger)
	defer closeSink()

	session := deck.New(ctx, deck.Config{Sink: sink, Logger: logger, UserID: userID})
	session.SetCriteria(config.Filters)

	loader := deck.NewLoader(ctx, client, logger)
	defer loader.Stop()

	renderer := view.New(config.UI.Width)
	renderer.AssessmentURL = config.UI.AssessmentURL

	b := &browser{
		ctx:      ctx,
		logger:   sessionLogger(logger, session.ID(), userID),
		config:   config,
		userID:   userID,
		loader:   loader,
		session:  session,
		renderer: renderer,
	}

	b.refresh()

	if script != "" {
		if err := b.replay(script); err != nil {
			return fmt.Errorf("replaying gestures from %s: %w", script, err)
		}
		return nil
	}

	return b.loop()
}

// loop shows the deck and prompts for the next action until the user quits.
func (b *browser) loop() error {
	for {
		fmt.Println(b.screen())

		prompt := promptui.Select{
			Label: "What next?",
			Items: b.actions(),
			Size:  12,
		}

		_, action, err := prompt.Run()
		if err != nil {
			if ignoreClosed(err) == nil {
				b.logger.Info("exiting", zap.String("reason", "prompt closed"))
				return nil
			}
			return err
		}

		if err := b.handleAction(action); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

func (b *browser) actions() []string {
	items := make([]string, 0, 14)
	if b.session.Top() != nil {
		items = append(items, PromptApply, PromptPass, PromptSave, PromptDetails, PromptGesture)
	}

	items = append(items, PromptFilters, PromptRefresh)

	if b.hiddenGems.Len() > 0 {
		items = append(items, PromptHiddenGems)
	}
	if len(b.session.Filtered()) > 0 {
		items = append(items, PromptReportByCompany, PromptMatchesToFile)
	}
	if b.config.ExcludeFile != "" && len(b.session.Dismissed()) > 0 {
		items = append(items, PromptAppendToExcludeFile)
	}

	return append(items, PromptQuit)
}

func (b *browser) handleAction(action string) error {
	switch action {
	case PromptApply:
		b.session.Swipe(deck.Right)
		return nil
	case PromptPass:
		b.session.Swipe(deck.Left)
		return nil
	case PromptSave:
		b.session.Save(b.session.Top())
		return nil
	case PromptDetails:
		return b.details()
	case PromptGesture:
		return b.gesture()
	case PromptFilters:
		return b.editFilters()
	case PromptRefresh:
		b.refresh()
		return nil
	case PromptHiddenGems:
		fmt.Println(b.renderer.HiddenGems(b.hiddenGems))
		return nil
	case PromptReportByCompany:
		matches := &careerapi.Matches{Items: b.session.Filtered()}
		pretty, _ := json.MarshalIndent(matches.ReportByCompany(), "", "  ")
		b.logger.Info(string(pretty), zap.Int("matches count", matches.Len()))
		return nil
	case PromptMatchesToFile:
		matches := &careerapi.Matches{Items: b.session.Filtered()}
		filename, err := matches.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		b.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return b.appendToExcludeFile()
	case PromptQuit:
		b.logger.Info("exiting", zap.String("reason", "quit requested"), zap.Any("counters", b.session.Counters()))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// refresh loads the feed again and rebuilds the deck from it.
func (b *browser) refresh() {
	feed, err := b.loader.Load(b.ctx, b.userID)
	switch {
	case errors.Is(err, deck.ErrSuperseded):
		b.logger.Debug("load superseded")
		return
	case errors.Is(err, careerapi.ErrNoAssessment):
		b.logger.Info("no assessment yet")
		b.setEmpty(view.NoAssessment)
		return
	case err != nil:
		b.logger.Warn("loading matches", zap.Error(err))
		b.setEmpty(view.LoadFailed)
		return
	}

	steps := []filtering.Filter{
		filtering.NewExcludeFile(b.config.ExcludeFile, b.logger),
	}

	matches, err := filtering.New(steps, b.logger).RunFilters(b.ctx, feed.Matches)
	if err != nil {
		b.logger.Warn("filtering matches", zap.Error(err))
		b.setEmpty(view.LoadFailed)
		return
	}

	b.empty = nil
	b.hiddenGems = feed.HiddenGems
	b.session.Load(matches)

	b.logger.Info("got matches",
		zap.Int("count", matches.Len()),
		zap.Int("filtered", len(b.session.Filtered())),
		zap.Int("hidden gems", feed.HiddenGems.Len()),
	)
}

func (b *browser) setEmpty(state view.EmptyState) {
	b.empty = &state
	b.hiddenGems = nil
	b.session.Load(nil)
}

func (b *browser) screen() string {
	if b.empty != nil {
		return b.renderer.Empty(*b.empty)
	}
	return b.renderer.Deck(b.session)
}

func (b *browser) details() error {
	top := b.session.Top()
	if top == nil {
		return nil
	}

	m, ok := b.session.Open(top.ID)
	if !ok {
		return nil
	}
	fmt.Println(b.renderer.Detail(m, b.session))

	prompt := promptui.Select{
		Label: "Choose an action and press ENTER",
		Items: []string{PromptApply, PromptSave, PromptBack},
	}

	_, action, err := prompt.Run()
	if err != nil {
		b.session.CloseDetail()
		return ignoreClosed(err)
	}

	switch action {
	case PromptApply:
		b.session.ApplyFromDetail()
	case PromptSave:
		b.session.SaveFromDetail()
	default:
		b.session.CloseDetail()
	}
	return nil
}

// gesture takes a drag offset in pixels or a key name.
func (b *browser) gesture() error {
	prompt := promptui.Prompt{
		Label: "Drag offset (e.g. -180) or key (left/right/h/l)",
		Validate: func(input string) error {
			input = strings.TrimSpace(input)
			if _, err := strconv.ParseFloat(input, 64); err == nil {
				return nil
			}
			if deck.KeyDirection(input) == deck.None {
				return fmt.Errorf("unsupported gesture %q", input)
			}
			return nil
		},
	}

	input, err := prompt.Run()
	if err != nil {
		return ignoreClosed(err)
	}

	input = strings.TrimSpace(input)
	var outcome deck.Outcome
	if offset, err := strconv.ParseFloat(input, 64); err == nil {
		outcome = b.session.Drag(offset)
	} else {
		outcome = b.session.Key(input)
	}

	if outcome.SnapBack {
		b.logger.Info("card snapped back", zap.String("hint", fmt.Sprintf("drag further than %.0f pixels to swipe", deck.DragThreshold)))
	}
	return nil
}

func (b *browser) appendToExcludeFile() error {
	excludeFile := b.config.ExcludeFile

	excluded, err := careerapi.AppendExcludedToFile(excludeFile, b.session.DismissedMatches().ToExcluded(time.Now()))
	if err != nil {
		return err
	}

	b.logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", len(excluded.IDs())))
	return nil
}

func (b *browser) replay(path string) error {
	gestures, err := deck.LoadScript(path)
	if err != nil {
		return err
	}

	summary, err := b.session.Replay(gestures)
	if err != nil {
		return err
	}

	fmt.Println(b.screen())

	b.logger.Info("replayed gestures",
		zap.Int("steps", summary.Steps),
		zap.Int("snap backs", summary.SnapBacks),
		zap.Int("opened", summary.Opened),
		zap.Int("cursor", summary.Cursor),
		zap.Strings("applied", summary.Applied),
		zap.Strings("saved", summary.Saved),
		zap.Strings("dismissed", summary.Dismissed),
	)
	return nil
}

func resolveToken(config *Config) (string, error) {
	if config == nil {
		return "", errors.New("config is required")
	}

	tokenFile := strings.TrimSpace(config.API.TokenFile)
	if tokenFile == "" {
		tokenFile = strings.TrimSpace(viper.GetString("api.token-file"))
	}

	// The matches endpoint works without a token, so an unset one is not an error.
	return secrets.Optional(secrets.Source{
		Name:    "api token",
		Value:   config.API.Token,
		File:    tokenFile,
		Keyring: tokenAccount,
		Env:     "MATCHDECK_TOKEN",
	})
}

func resolveUser(ctx context.Context, config *Config, log *zap.Logger) (string, error) {
	idFile := identity.File(userIDFile(config))

	chain := identity.Chain{
		Providers: []identity.Provider{
			identity.Static(config.User.ID),
			identity.Env(identity.EnvUserID),
			idFile,
		},
		Logger: log,
	}

	userID, err := chain.UserID(ctx)
	if err != nil {
		return "", err
	}

	if err := idFile.Remember(userID); err != nil {
		log.Warn("caching user id", zap.Error(err))
	}
	return userID, nil
}

func userIDFile(config *Config) string {
	if config.User.IDFile != "" {
		return config.User.IDFile
	}

	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, app, "user-id")
}

// newSink returns the analytics sink and a func that drains it.
func newSink(config *Config, userAgent string, log *zap.Logger) (tracking.Sink, func()) {
	if !config.Tracking.Enabled {
		return tracking.Nop(), func() {}
	}

	url := config.Tracking.URL
	if url == "" {
		url = strings.TrimRight(config.API.URL, "/") + analyticsPath
	}

	sink := tracking.NewHTTPSink(tracking.HTTPConfig{
		URL:       url,
		UserAgent: userAgent,
		Rate:      config.Tracking.Rate,
		Burst:     config.Tracking.Burst,
	}, log)

	return sink, func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()

		if err := sink.Close(ctx); err != nil {
			log.Debug("analytics events still in flight on exit", zap.Error(err))
		}
	}
}

// ignoreClosed drops the errors promptui returns when the user backs out.
func ignoreClosed(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return nil
	}
	return err
}

func sessionLogger(l *zap.Logger, sessionID, userID string) *zap.Logger {
	return logger.WithSession(l, sessionID, userID)
}

func redacted(config *Config) Config {
	out := *config
	if out.API != nil && out.API.Token != "" {
		api := *out.API
		api.Token = "<redacted>"
		out.API = &api
	}
	return out
}
