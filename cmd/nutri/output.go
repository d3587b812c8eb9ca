package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"nutri-go/internal/nutri"
)

func formatNutrients(n nutri.Nutrients) string {
	return fmt.Sprintf("%4.0f kcal  P %3.0fg  C %3.0fg  F %3.0fg  Na %4.0fmg",
		n.Calories, n.Protein, n.Carbs, n.Fat, n.Sodium)
}

func printEntry(e nutri.FoodLogEntry) {
	fmt.Printf("%s %s  %-9s %-16s %4.0fg  %s\n", e.Date, e.Time, e.Meal, e.Name, e.Portion, formatNutrients(e.Nutrients))
}

func printProfile(p nutri.Profile) {
	bmi := nutri.BMI(p.WeightKG, p.HeightCM)
	fmt.Printf("Name:         %s\n", p.Name)
	fmt.Printf("Age:          %d\n", p.Age)
	fmt.Printf("Height:       %.0f cm\n", p.HeightCM)
	fmt.Printf("Weight:       %.1f kg\n", p.WeightKG)
	fmt.Printf("BMI:          %.1f (%s)\n", bmi, nutri.BMICategory(bmi))
	fmt.Printf("TDEE:         %d kcal\n", p.TDEE)
	if len(p.Diseases) > 0 {
		fmt.Printf("Conditions:   %s\n", strings.Join(p.Diseases, ", "))
	}
	if len(p.DietaryRestrictions) > 0 {
		fmt.Printf("Restrictions: %s\n", strings.Join(p.DietaryRestrictions, ", "))
	}
}

func printWarnings(warnings []nutri.Warning) {
	for _, w := range warnings {
		fmt.Printf("! %s\n", w.Message)
	}
}

// confirmPrompt asks a yes/no question on stdin. Anything but y/yes is no.
func confirmPrompt(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// readPassphrase reads a passphrase from the terminal without echo.
func readPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("a terminal is required to enter the passphrase")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

// readNewPassphrase asks for a passphrase twice and checks both match.
func readNewPassphrase() (string, error) {
	first, err := readPassphrase("New passphrase: ")
	if err != nil {
		return "", err
	}
	second, err := readPassphrase("Repeat passphrase: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passphrases do not match")
	}
	return first, nil
}
