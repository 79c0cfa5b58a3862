package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"caixa/internal/api"
	"caixa/internal/cart"
	"caixa/internal/cashregister"
	"caixa/internal/catalog"
	"caixa/internal/config"
	"caixa/internal/gate"
	"caixa/internal/llm"
	"caixa/internal/money"
	"caixa/internal/notifications"
	"caixa/internal/payables"
	"caixa/internal/reports"
	"caixa/internal/sales"
	"caixa/internal/session"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Params struct {
	fx.In

	Config    config.Config
	Logger    *zap.Logger
	LLM       *llm.Client
	API       *api.Client
	Sessions  *session.Manager
	Register  *cashregister.Controller
	Gate      *gate.Gate
	Checkout  *cart.Checkout
	Payables  *payables.Service
	Products  *catalog.Products
	Suppliers *catalog.Suppliers
	Stats     *sales.Stats
	Reports   *reports.Exporter
	Feed      *notifications.Feed
}

type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, args []string) error
}

type Runner struct {
	defaults Options
	options  Options
	logger   *zap.Logger
	format   money.Format
	title    cases.Caser

	llm       chatModel
	api       *api.Client
	sessions  *session.Manager
	register  *cashregister.Controller
	gate      *gate.Gate
	checkout  *cart.Checkout
	payables  *payables.Service
	products  *catalog.Products
	suppliers *catalog.Suppliers
	stats     *sales.Stats
	reports   *reports.Exporter
	feed      *notifications.Feed

	in       *bufio.Scanner
	out      io.Writer
	commands map[string]command
}

func NewRunner(p Params) *Runner {
	tag, err := language.Parse(p.Config.Locale)
	if err != nil {
		tag = language.BrazilianPortuguese
	}
	r := &Runner{
		defaults: Options{
			Debug: p.Config.Debug,
			Email: p.Config.Email,
		},
		logger:    p.Logger.Named("cli"),
		format:    money.ForLocale(p.Config.Locale),
		title:     cases.Title(tag),
		llm:       p.LLM,
		api:       p.API,
		sessions:  p.Sessions,
		register:  p.Register,
		gate:      p.Gate,
		checkout:  p.Checkout,
		payables:  p.Payables,
		products:  p.Products,
		suppliers: p.Suppliers,
		stats:     p.Stats,
		reports:   p.Reports,
		feed:      p.Feed,
	}
	r.SetIO(os.Stdin, os.Stdout)
	r.commands = r.commandTable()
	return r
}

// SetIO redirects the prompts and the output.
func (r *Runner) SetIO(in io.Reader, out io.Writer) {
	r.in = bufio.NewScanner(in)
	r.out = out
}

func (r *Runner) commandTable() map[string]command {
	list := []command{
		{"login", "login [-email E] [-remember]", "entra com e-mail e senha", r.cmdLogin},
		{"signup", "signup -name N -email E -company C", "cria uma conta", r.cmdSignup},
		{"logout", "logout", "encerra a sessão", r.cmdLogout},
		{"register", "register status|open|withdraw|close|history", "caixa: abertura, sangria e fechamento", r.cmdRegister},
		{"sale", "sale -method cash|credit|debit|pix [-nfe K] CODE[:QTD]...", "registra uma venda", r.cmdSale},
		{"sales", "sales [-date AAAA-MM-DD] [-refresh]", "vendas do dia", r.cmdSales},
		{"payables", "payables list|add|edit|pay|plan|delete|stats", "contas a pagar", r.cmdPayables},
		{"products", "products list|add|price|import", "produtos", r.cmdProducts},
		{"suppliers", "suppliers list|add|edit|delete", "fornecedores", r.cmdSuppliers},
		{"report", "report -type T -period P [-dir D]", "baixa um relatório CSV", r.cmdReport},
		{"notifications", "notifications", "avisos e lembretes de pagamento", r.cmdNotifications},
		{"dashboard", "dashboard", "painel protegido por senha", r.cmdDashboard},
		{"assistant", "assistant [pergunta]", "pergunte ao assistente", r.cmdAssistant},
	}
	table := make(map[string]command, len(list))
	for _, c := range list {
		table[c.name] = c
	}
	return table
}

func (r *Runner) Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return r.Run(ctx, os.Args[1:])
}

// Run parses the global flags, restores the saved session and runs one
// command. The returned error carries the message meant for the operator.
func (r *Runner) Run(ctx context.Context, args []string) error {
	r.options = r.defaults

	fs := flag.NewFlagSet("caixa", flag.ContinueOnError)
	fs.SetOutput(r.out)
	fs.Usage = r.usage(fs)
	fs.BoolVar(&r.options.JSON, "json", r.options.JSON, "Saída em JSON")
	fs.BoolVar(&r.options.Debug, "debug", r.options.Debug, "Log detalhado")
	fs.DurationVar(&r.options.Timeout, "timeout", r.options.Timeout, "Tempo máximo do comando (ex.: 30s, 0 = sem limite)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if r.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.options.Timeout)
		defer cancel()
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return nil
	}
	cmd, ok := r.commands[rest[0]]
	if !ok {
		fs.Usage()
		return fmt.Errorf("comando desconhecido: %s", rest[0])
	}

	if err := r.sessions.Restore(ctx); err != nil {
		r.logger.Warn("restore session", zap.Error(err))
	}

	r.logger.Info("command", zap.String("name", cmd.name), zap.Strings("args", rest[1:]))
	if err := cmd.run(ctx, rest[1:]); err != nil {
		return r.fail(cmd.name, err)
	}
	return nil
}

func (r *Runner) usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(r.out, "Uso: %s [flags] <comando> [args]\n\nComandos:\n", fs.Name())
		names := make([]string, 0, len(r.commands))
		for name := range r.commands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c := r.commands[name]
			fmt.Fprintf(r.out, "  %-60s %s\n", c.usage, c.summary)
		}
		fmt.Fprintln(r.out, "\nFlags:")
		fs.PrintDefaults()
	}
}

// subFlags builds the flag set of a subcommand. Parsing errors are
// printed by the flag package itself.
func (r *Runner) subFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.out)
	return fs
}

func (r *Runner) prompt(label string) (string, error) {
	fmt.Fprint(r.out, label)
	if !r.in.Scan() {
		if err := r.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(r.in.Text()), nil
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *Runner) println(args ...any) {
	fmt.Fprintln(r.out, args...)
}
