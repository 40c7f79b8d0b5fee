package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	raven "github.com/getsentry/raven-go"
	"github.com/joho/godotenv"

	"github.com/wishstox/wishstox-backend/api"
	"github.com/wishstox/wishstox-backend/db"
	"github.com/wishstox/wishstox-backend/email"
)

// validPort converts the given port to the string net/http expects, and
// errors if it isn't numeric.
func validPort(port string) (string, error) {
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("given portstring %s is invalid", port)
	}
	return fmt.Sprintf(":%s", port), nil
}

// Serves all public API endpoints.
func servePublicEndpoints() {
	cfg, err := db.LoadEnvironmentVariables()
	if err != nil {
		log.Fatal(err)
	}
	database, err := db.InitSQLDatabase(cfg)
	if err != nil {
		log.Fatal(err)
	}
	emailConfig, err := email.MakeConfigFromEnv(database)
	if err != nil {
		// Registrations still work without a mailer; sends are logged
		// instead of delivered.
		log.Printf("couldn't connect to mailserver: %v", err)
	}
	a := api.API{
		Database: database,
		Emailer:  emailConfig,
	}
	mux := http.NewServeMux()
	mainHandler := a.RegisterHandlers(mux)
	portString, err := validPort(cfg.Port)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Listening on %s", portString)
	log.Fatal(http.ListenAndServe(portString, mainHandler))
}

func main() {
	godotenv.Load()
	raven.SetDSN(os.Getenv("SENTRY_DSN"))
	servePublicEndpoints()
}
