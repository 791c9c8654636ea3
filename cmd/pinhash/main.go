// cmd/pinhash prints a bcrypt hash for CANCEL_PIN_HASH.
// Uso: go run ./cmd/pinhash -pin 4321
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	pin := flag.String("pin", "", "PIN de cancelación")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	if *pin == "" {
		fmt.Fprintln(os.Stderr, "uso: pinhash -pin <PIN>")
		os.Exit(2)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(*pin), *cost)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(h))
}
