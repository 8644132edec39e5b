// Command token issues a bearer token for an account, signed with the
// server's symmetric key.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/joefazee/categorical/internal/nexus"
	"github.com/joefazee/categorical/internal/security"
)

func main() {
	account := flag.String("account", "", "account address the token speaks for")
	scope := flag.String("scope", security.TokenScopeTrade, "token scope: trade or admin")
	ttl := flag.Duration("ttl", 0, "token lifetime, defaults to TOKEN_DURATION")
	flag.Parse()

	if err := run(*account, *scope, *ttl); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(account, scope string, ttl time.Duration) error {
	if !common.IsHexAddress(account) {
		return fmt.Errorf("invalid account address %q", account)
	}
	if scope != security.TokenScopeTrade && scope != security.TokenScopeAdmin {
		return fmt.Errorf("unknown scope %q", scope)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	cfg := struct{ Security security.Config }{Security: *security.GetDefaultConfig()}
	if err := nexus.NewLoader(nexus.WithOnlyEnvironment()).Load(&cfg); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = cfg.Security.TokenDuration
	}

	maker, err := security.NewPasetoMaker(cfg.Security.SymmetricKey)
	if err != nil {
		return err
	}
	token, payload, err := maker.CreateToken(common.HexToAddress(account), ttl, scope)
	if err != nil {
		return err
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", payload.ExpiredAt.Format(time.RFC3339))
	return nil
}
