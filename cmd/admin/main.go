// Command admin creates an administrator account in the configured database.
//
//	admin -name Root -email root@example.com
//
// The password is read from the terminal unless ADMIN_PASSWORD is set.
// Server configuration (.env, environment, -c file, -d DSN) applies as for
// the server binary.
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"

	"github.com/sayedsafi2000/pixelsbee/internal/flagx"
	"github.com/sayedsafi2000/pixelsbee/internal/server"
	"github.com/sayedsafi2000/pixelsbee/internal/server/admincli"
	"github.com/sayedsafi2000/pixelsbee/internal/server/config"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/repomanager"
	"github.com/sayedsafi2000/pixelsbee/internal/server/services"
)

func main() {

	var in admincli.Input
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	fs.StringVar(&in.Name, "name", "", "admin display name")
	fs.StringVar(&in.Email, "email", "", "admin email")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-name", "-email", "--name", "--email"}))
	in.Password = os.Getenv("ADMIN_PASSWORD")

	ctx := context.Background()
	cfg := config.LoadConfig()

	db, err := server.OpenDB(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := server.Migrate(ctx, db, rm); err != nil {
		log.Fatalf("%v", err)
	}

	as := services.NewAccountService(db, rm, cfg)
	if err := admincli.Run(ctx, in, bufio.NewReader(os.Stdin), os.Stdout, as); err != nil {
		log.Fatalf("%v", err)
	}
}
