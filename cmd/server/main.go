package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mgallardo/freightdeck/internal/flagx"
	"github.com/mgallardo/freightdeck/internal/server"
	"github.com/mgallardo/freightdeck/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	if clientID := mintTokenFlag(); clientID != "" {
		token, err := server.MintToken(cfg, clientID)
		if err != nil {
			log.Printf("%v", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}

// mintTokenFlag extracts the client id given via -mint-token, ignoring all
// other arguments. When set, the binary issues a bearer token signed with the
// configured secret and exits instead of serving.
func mintTokenFlag() string {
	var clientID string

	args := flagx.FilterArgs(os.Args[1:], []string{"-mint-token", "--mint-token"})

	fs := flag.NewFlagSet("mint", flag.ContinueOnError)
	fs.StringVar(&clientID, "mint-token", "", "Issue a bearer token for the given client id and exit")
	_ = fs.Parse(args)

	return clientID
}
