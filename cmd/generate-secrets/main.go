package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/localbookr/marketplace-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// Prints fresh JWT secrets in .env format
func main() {
	envFile := flag.Bool("env", false, "print only KEY=value lines")
	flag.Parse()

	accessSecret, refreshSecret, err := utils.GenerateJWTSecrets()
	if err != nil {
		logrus.Fatalf("Failed to generate secrets: %v", err)
	}

	if *envFile {
		fmt.Printf("JWT_SECRET=%s\nJWT_REFRESH_SECRET=%s\n", accessSecret, refreshSecret)
		return
	}

	fmt.Fprintln(os.Stderr, "Add these to your .env file or deployment secrets:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", accessSecret)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", refreshSecret)
	fmt.Println()
	fmt.Fprintln(os.Stderr, "Keep these out of version control.")
}
