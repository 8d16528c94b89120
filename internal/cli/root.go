// Package cli implements the harperdb command line tool.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	harperdb "github.com/harperdb/harperdb-sdk-go"
	"github.com/harperdb/harperdb-sdk-go/pkg/logger"
)

const envPrefix = "HARPERDB"

// command carries what every subcommand needs once flags are resolved.
type command struct {
	config *Config
	stdout io.Writer
	stderr io.Writer
	db     *harperdb.DB

	open func(cfg *Config, log logger.Logger) (*harperdb.DB, error)
}

func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &command{
		config: NewConfig(),
		stdout: stdout,
		stderr: stderr,
		open:   (*Config).Open,
	}
	return newRootCommand(c, stdin)
}

func newRootCommand(c *command, stdin io.Reader) *cobra.Command {
	rc := &cobra.Command{
		Use:   "harperdb",
		Short: "Run HarperDB operations from the command line.",
		Long: `Run HarperDB operations from the command line.

Every flag can also be given as an environment variable named after the
flag with a HARPERDB_ prefix, e.g. HARPERDB_ENDPOINT or HARPERDB_USERNAME.
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setAllConfig(viper.New(), cmd.Flags()); err != nil {
				return err
			}

			log, err := logger.New().FromBuffer(c.stderr).Level(c.config.LogLevel).Make()
			if err != nil {
				return err
			}
			db, err := c.open(c.config, log)
			if err != nil {
				return err
			}
			c.db = db
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.db == nil {
				return nil
			}
			return c.db.Close(cmd.Context())
		},
	}

	flags := rc.PersistentFlags()
	flags.StringVar(&c.config.Endpoint, "endpoint", c.config.Endpoint, "HarperDB operations API url.")
	flags.StringVar(&c.config.Username, "username", "", "Authentication username.")
	flags.StringVar(&c.config.Password, "password", "", "Authentication password.")
	flags.BoolVar(&c.config.Tokens, "tokens", false, "Authenticate with operation tokens instead of Basic auth.")
	flags.DurationVar(&c.config.Timeout, "timeout", c.config.Timeout, "Per-request timeout.")
	flags.StringVar(&c.config.LogLevel, "log-level", c.config.LogLevel, "Minimum level of logs written to stderr.")

	rc.AddCommand(newDescribeCommand(c))
	rc.AddCommand(newSQLCommand(c))
	rc.AddCommand(newGetCommand(c))
	rc.AddCommand(newUpsertCommand(c))
	rc.AddCommand(newDeleteCommand(c))

	rc.SetIn(stdin)
	rc.SetOut(c.stdout)
	rc.SetErr(c.stderr)
	return rc
}

// setAllConfig fills every flag not given on the command line from the
// HARPERDB_ environment variable of the same name, with dashes replaced by
// underscores.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			return
		}
		if err := f.Value.Set(v.GetString(f.Name)); err != nil {
			flagErr = fmt.Errorf("invalid %s: %w", f.Name, err)
		}
	})
	return flagErr
}

func (c *command) print(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
