package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"spendtrack/internal/config"
	"spendtrack/internal/ledger"
	"spendtrack/internal/localcache"
	"spendtrack/internal/logger"
	"spendtrack/internal/reconcile"
	"spendtrack/internal/remote"
)

var (
	flagAPIURL  string
	flagCache   string
	flagTimeout time.Duration
	flagJSON    bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "spendtrack",
	Short:         "Track revenue, expenses and your running balance",
	Long:          "Record revenue and expenses against the spendtrack API. When the API is unreachable, changes are kept in a local cache and can be pushed later with `spendtrack sync`.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runStatus,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Ledger API base URL (default $LEDGER_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flagCache, "cache", "", "Local cache file (default $LEDGER_CACHE_PATH)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Per-request timeout (default $REQUEST_TIMEOUT)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log engine activity to stderr")

	cobra.OnFinalize(func() {
		if sess != nil {
			sess.close()
		}
	})
}

// session is the state shared by one CLI invocation.
type session struct {
	ctrl  *reconcile.Controller
	close func()
	load  *reconcile.Result
}

var sess *session

// openSession wires config, cache, remote client and controller, then loads
// the ledger.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		logger.Init(cfg.Env)
	} else {
		logger.Init("cli")
	}

	apiURL := cfg.RemoteURL
	if flagAPIURL != "" {
		apiURL = flagAPIURL
	}
	cachePath := cfg.CachePath
	if flagCache != "" {
		cachePath = flagCache
	}
	timeout := cfg.RequestTimeout
	if flagTimeout > 0 {
		timeout = flagTimeout
	}

	var cache localcache.Store
	closeFn := func() {}
	fileCache, err := localcache.Open(cachePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Cache unavailable (%v), changes will not persist locally\n", err)
		cache = localcache.NewMemory()
	} else {
		cache = fileCache
		closeFn = func() { _ = fileCache.Close() }
	}

	client := remote.NewClient(apiURL, &http.Client{Timeout: timeout})
	ctrl := reconcile.NewController(ledger.NewStore(client, cache))

	res, err := ctrl.Load(ctx)
	if err != nil {
		closeFn()
		return nil, err
	}

	sess = &session{ctrl: ctrl, close: closeFn, load: res}
	return sess, nil
}
