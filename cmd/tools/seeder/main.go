package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/garsonhq/backend-garson/internal/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedWaiters(db)
	seedMenu(db)
	seedExtras(db)
	seedDiscounts(db)

	log.Println("Seeding completed successfully!")
}

func seedWaiters(db *sql.DB) {
	waiters := []struct {
		Name string
		Role string
		PIN  string
	}{
		{"anna", "manager", "4321"},
		{"tigran", "waiter", "1111"},
		{"lilit", "waiter", "2222"},
		{"vahe", "waiter", "3333"},
	}

	log.Println("Seeding waiters...")
	for _, w := range waiters {
		hash, err := auth.HashPIN(w.PIN)
		if err != nil {
			log.Fatalf("Failed to hash PIN for %s: %v", w.Name, err)
		}
		_, err = db.Exec(`
			INSERT INTO waiters (name, role, pin_hash)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING;
		`, w.Name, w.Role, hash)
		if err != nil {
			log.Printf("Failed to seed waiter %s: %v", w.Name, err)
		}
	}
}

func seedMenu(db *sql.DB) {
	items := []struct {
		Name        string
		Description string
		Category    string
		Price       string
	}{
		{"Khachapuri Adjarian", "Open boat with egg and butter", "mains", "3200.00"},
		{"Lahmajo", "Thin flatbread with spiced lamb", "mains", "1500.00"},
		{"Spas", "Warm yogurt and wheat soup", "soups", "1800.00"},
		{"Tolma", "Grape leaves stuffed with beef and rice", "mains", "2900.00"},
		{"Khorovats Plate", "Grilled pork skewers with vegetables", "grill", "4500.00"},
		{"Summer Salad", "Tomato, cucumber, herbs", "salads", "1600.00"},
		{"Gata", "Sweet layered pastry", "desserts", "1200.00"},
		{"Tan", "Salted yogurt drink", "drinks", "600.00"},
		{"Compote", "House fruit compote", "drinks", "700.00"},
		{"Armenian Coffee", "Brewed in a jazzve", "drinks", "800.00"},
	}

	log.Println("Seeding menu items...")
	for _, item := range items {
		_, err := db.Exec(`
			INSERT INTO menu_items (name, description, category, price)
			SELECT $1, $2, $3, $4
			WHERE NOT EXISTS (SELECT 1 FROM menu_items WHERE name = $1);
		`, item.Name, item.Description, item.Category, item.Price)
		if err != nil {
			log.Printf("Failed to seed menu item %s: %v", item.Name, err)
		}
	}
}

func seedExtras(db *sql.DB) {
	extras := []struct {
		Name  string
		Price string
	}{
		{"Extra cheese", "400.00"},
		{"Extra herbs", "200.00"},
		{"Side of matsun", "350.00"},
		{"Grilled vegetables", "900.00"},
	}

	log.Println("Seeding extras...")
	for _, e := range extras {
		_, err := db.Exec(`
			INSERT INTO extras (name, price)
			SELECT $1, $2
			WHERE NOT EXISTS (SELECT 1 FROM extras WHERE name = $1);
		`, e.Name, e.Price)
		if err != nil {
			log.Printf("Failed to seed extra %s: %v", e.Name, err)
		}
	}
}

func seedDiscounts(db *sql.DB) {
	discounts := []struct {
		Name       string
		Kind       string
		PercentBps int
		Amount     int64
	}{
		{"Happy hour 10%", "percent", 1000, 0},
		{"Staff meal 25%", "percent", 2500, 0},
		{"Loyalty voucher 2000", "fixed", 0, 200000},
	}

	log.Println("Seeding discounts...")
	for _, d := range discounts {
		_, err := db.Exec(`
			INSERT INTO discounts (name, kind, percent_bps, amount)
			SELECT $1, $2, $3, $4
			WHERE NOT EXISTS (SELECT 1 FROM discounts WHERE name = $1);
		`, d.Name, d.Kind, d.PercentBps, d.Amount)
		if err != nil {
			log.Printf("Failed to seed discount %s: %v", d.Name, err)
		}
	}
}
