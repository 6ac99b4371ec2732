// Command seeder fills a development database with a small artisan catalog.
package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	seedUsers(db)
	seedProducts(db)
	seedPromos(db)

	log.Println("seeding completed")
}

func seedUsers(db *sql.DB) {
	users := []struct {
		ID    string
		Name  string
		Email string
		Role  string
	}{
		{"seed-seller-1", "Meera Crafts", "meera@example.com", "seller"},
		{"seed-customer-1", "Asha Rao", "asha@example.com", "customer"},
		{"seed-customer-2", "Vikram Singh", "vikram@example.com", "customer"},
	}
	log.Println("seeding users...")
	for _, u := range users {
		_, err := db.Exec(`
			INSERT INTO users (id, email, name, role) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name`,
			u.ID, u.Email, u.Name, u.Role)
		if err != nil {
			log.Fatalf("seed user %s: %v", u.Email, err)
		}
	}
}

func seedProducts(db *sql.DB) {
	// OfferPrice 0 means no active offer, mirroring the products table default.
	products := []struct {
		Name        string
		Description string
		Category    string
		Price       float64
		OfferPrice  float64
	}{
		{"Terracotta vase", "Hand thrown clay vase with a matte glaze", "pottery", 120, 100},
		{"Ceramic serving bowl", "Glazed ceramic bowl for the table", "pottery", 60, 0},
		{"Block printed silk scarf", "Hand block printed silk", "textiles", 49.50, 45},
		{"Woven cotton shawl", "Loom woven cotton shawl", "textiles", 80, 0},
		{"Silver bead necklace", "Hand strung silver beads", "jewelry", 150, 130},
		{"Teak spice box", "Carved teak box with six compartments", "wood", 90, 0},
		{"Wicker storage basket", "Woven cane and bamboo basket", "basket", 40, 35},
	}
	log.Println("seeding products...")
	for _, p := range products {
		_, err := db.Exec(`
			INSERT INTO products (seller_id, name, description, category, price, offer_price)
			SELECT 'seed-seller-1', $1, $2, $3, $4, $5
			WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1)`,
			p.Name, p.Description, p.Category, p.Price, p.OfferPrice)
		if err != nil {
			log.Fatalf("seed product %s: %v", p.Name, err)
		}
	}
}

func seedPromos(db *sql.DB) {
	log.Println("seeding promos...")
	_, err := db.Exec(`
		INSERT INTO promotions (code, discount_percent, active)
		VALUES ('SAVE10', 10, TRUE)
		ON CONFLICT (code) DO NOTHING`)
	if err != nil {
		log.Fatalf("seed promos: %v", err)
	}
}
