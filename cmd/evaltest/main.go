package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/crystal-mush/softcode/pkg/boltstore"
	"github.com/crystal-mush/softcode/pkg/config"
	"github.com/crystal-mush/softcode/pkg/eval"
	"github.com/crystal-mush/softcode/pkg/eval/functions"
	"github.com/crystal-mush/softcode/pkg/events"
	"github.com/crystal-mush/softcode/pkg/gamedb"
	"github.com/crystal-mush/softcode/pkg/metrics"
	"github.com/crystal-mush/softcode/pkg/sqlstore"
)

func main() {
	os.Exit(run())
}

// run does the work of main and returns the exit status, so deferred
// cleanup happens before the process exits.
func run() int {
	confPath := flag.String("conf", "", "Path to config file (YAML or TinyMUSH .conf)")
	dbPath := flag.String("db", "", "Path to bbolt database (overrides config)")
	player := flag.Int("player", 1, "DBRef number to use as player context")
	expr := flag.String("e", "", "Expression to evaluate (non-interactive mode)")
	batch := flag.String("batch", "", "File with expressions to evaluate (one per line)")
	trace := flag.Bool("trace", false, "Set the TRACE flag on the player")
	sqlPath := flag.String("sql", "", "SQLite file (or MySQL DSN with -sql-driver mysql) for sql()")
	sqlDriver := flag.String("sql-driver", "", "SQL driver: sqlite or mysql (overrides config)")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	conf := config.Default()
	if *confPath != "" {
		var err error
		conf, err = config.Load(*confPath)
		if err != nil {
			log.Printf("Error loading config: %v", err)
			return 1
		}
	}
	if *dbPath != "" {
		conf.Database = *dbPath
	}
	if *sqlPath != "" {
		conf.SQLEnabled = true
		conf.SQLDatabase = *sqlPath
	}
	if *sqlDriver != "" {
		conf.SQLDriver = *sqlDriver
	}
	if *metricsAddr != "" {
		conf.MetricsAddr = *metricsAddr
	}
	if *debug {
		conf.Debug = true
	}

	// Object database
	var (
		db     *gamedb.Database
		ufuncs []*eval.UFunction
		store  *boltstore.Store
	)
	if conf.Database != "" {
		var err error
		store, err = boltstore.Open(conf.Database)
		if err != nil {
			log.Printf("Error opening database: %v", err)
			return 1
		}
		defer store.Close()
		if store.HasData() {
			db, ufuncs, err = store.LoadAll()
			if err != nil {
				log.Printf("Error loading database: %v", err)
				return 1
			}
		} else {
			db = seedDatabase()
			if err := store.Import(db, nil); err != nil {
				log.Printf("Error seeding database: %v", err)
				return 1
			}
		}
	} else {
		db = seedDatabase()
		fmt.Fprintf(os.Stderr, "Using in-memory test database\n")
	}
	if conf.GodDBRef > 0 {
		db.God = gamedb.DBRef(conf.GodDBRef)
	}

	ctx := eval.NewEvalContext(db)
	ctx.Player = gamedb.DBRef(*player)
	ctx.Cause = ctx.Player
	ctx.Caller = ctx.Player
	functions.RegisterAll(ctx)
	for _, uf := range ufuncs {
		ctx.DefineUFunction(uf)
	}
	conf.Apply(ctx)

	// Trace output and pemits go to stdout through the event bus.
	bus := events.NewBus()
	out := events.NewWriterSubscriber(os.Stdout)
	out.Prefix = true
	bus.SubscribeGlobal(out, events.EvTrace, events.EvNotify)
	defer out.Close()
	ctx.Notifier = &events.Notifier{Bus: bus, Source: ctx.Player}

	if conf.MetricsAddr != "" {
		m := metrics.New(time.Now())
		ctx.Observer = m
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		go func() {
			if err := http.ListenAndServe(conf.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("metrics: %v", err)
			}
		}()
		fmt.Fprintf(os.Stderr, "Metrics on http://%s/metrics\n", conf.MetricsAddr)
	}

	if conf.SQLEnabled && conf.SQLDatabase != "" {
		sqlStore, err := sqlstore.OpenDriver(conf.SQLDriver, conf.SQLDatabase, conf.SQLQueryLimit, conf.SQLTimeout)
		if err != nil {
			log.Printf("Error opening SQL database: %v", err)
			return 1
		}
		defer func() {
			if err := sqlStore.Checkpoint(); err != nil {
				log.Printf("sqlstore: checkpoint: %v", err)
			}
			sqlStore.Close()
		}()
		sqlStore.Reconnect = conf.SQLReconnect
		ctx.SQL = sqlStore
	}

	sess := &session{ctx: ctx, db: db, store: store}
	if *trace {
		if _, err := sess.setFlag(fmt.Sprintf("#%d=TRACE", *player)); err != nil {
			log.Printf("Error setting TRACE: %v", err)
			return 1
		}
	}

	// Config reloads arrive on the watcher goroutine; the REPL applies them
	// between lines so the context is only touched from one goroutine.
	reloads := make(chan *config.EvalConf, 1)
	if *confPath != "" {
		stop, err := config.Watch(*confPath, func(c *config.EvalConf) {
			select {
			case <-reloads:
			default:
			}
			reloads <- c
		})
		if err != nil {
			log.Printf("Config watch disabled: %v", err)
		} else {
			defer stop()
		}
	}
	applyReloads := func() {
		select {
		case c := <-reloads:
			c.Apply(ctx)
		default:
		}
	}

	if *expr != "" {
		fmt.Println(sess.eval(*expr))
		return 0
	}

	if *batch != "" {
		return runBatchFile(sess, *batch, os.Stdout, applyReloads)
	}

	// Interactive REPL mode. Piped input gets no banner or prompt.
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Println("Softcode Evaluator")
		fmt.Printf("Player context: #%d\n", *player)
		fmt.Println("Type expressions to evaluate, or &ATTR, @function, @set, @create. Ctrl+D to exit.")
		fmt.Println()
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("softcode> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		applyReloads()
		result, err := sess.run(line)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Println(result)
	}
	return 0
}

// runBatchFile runs the batch file at path and returns the exit status:
// 0 when every check passed, 1 otherwise.
func runBatchFile(sess *session, path string, w io.Writer, before func()) int {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("Error opening batch file: %v", err)
		return 1
	}
	defer f.Close()
	if failed := runBatch(sess, f, w, before); failed > 0 {
		fmt.Fprintf(w, "%d failed\n", failed)
		return 1
	}
	return 0
}

// runBatch evaluates one line at a time. A line of the form
// "expression | expected" is checked against the expected result.
// Returns the number of failed checks.
func runBatch(sess *session, r io.Reader, w io.Writer, before func()) int {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	failed := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		before()

		parts := strings.SplitN(line, " | ", 2)
		result, err := sess.run(parts[0])
		if err != nil {
			fmt.Fprintf(w, "Line %d: error: %v\n", lineNum, err)
			failed++
			continue
		}

		if len(parts) == 2 {
			expected := parts[1]
			status := "PASS"
			if result != expected {
				status = "FAIL"
				failed++
			}
			fmt.Fprintf(w, "[%s] Line %d: %s\n", status, lineNum, parts[0])
			if status == "FAIL" {
				fmt.Fprintf(w, "  Expected: %s\n", expected)
				fmt.Fprintf(w, "  Got:      %s\n", result)
			}
		} else {
			fmt.Fprintf(w, "Line %d: %s => %s\n", lineNum, parts[0], result)
		}
	}
	return failed
}
