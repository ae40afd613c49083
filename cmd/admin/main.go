package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mindcare/backend/internal/models"
	"mindcare/backend/internal/storage"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	store := storage.NewService(db, rdb)

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "notify-user":
		if len(os.Args) < 6 {
			fmt.Println("Usage: admin notify-user <user_id> <type> <title> <message...>")
			os.Exit(1)
		}
		userID := os.Args[2]
		if _, err := store.GetUserByID(userID); err != nil {
			log.Fatalf("Unknown user %s: %v", userID, err)
		}
		dispatch(store, models.Notification{
			Scope:       models.ScopeUser,
			RecipientID: userID,
			Type:        os.Args[3],
			Title:       os.Args[4],
			Message:     strings.Join(os.Args[5:], " "),
		})
	case "notify-role":
		if len(os.Args) < 6 {
			fmt.Println("Usage: admin notify-role <patient|counselor|admin> <type> <title> <message...>")
			os.Exit(1)
		}
		role := models.Role(os.Args[2])
		if !role.Valid() {
			fmt.Printf("Unknown role %q\n", os.Args[2])
			os.Exit(1)
		}
		dispatch(store, models.Notification{
			Scope:         models.ScopeRole,
			RecipientRole: role,
			Type:          os.Args[3],
			Title:         os.Args[4],
			Message:       strings.Join(os.Args[5:], " "),
		})
	case "notify-all":
		if len(os.Args) < 5 {
			fmt.Println("Usage: admin notify-all <type> <title> <message...>")
			os.Exit(1)
		}
		dispatch(store, models.Notification{
			Scope:   models.ScopeGlobal,
			Type:    os.Args[2],
			Title:   os.Args[3],
			Message: strings.Join(os.Args[4:], " "),
		})
	case "list-online":
		users, err := store.GetOnlineUsers()
		if err != nil {
			log.Fatalf("Error listing online users: %v", err)
		}
		fmt.Printf("%d users online\n", len(users))
		for _, u := range users {
			fmt.Println(u)
		}
	case "close-stale":
		hours := 24
		if len(os.Args) > 2 {
			hours, err = strconv.Atoi(os.Args[2])
			if err != nil {
				fmt.Println("Invalid hours. Please provide an integer.")
				os.Exit(1)
			}
		}
		count, err := store.CloseStaleAppointments(time.Now().Add(-time.Duration(hours) * time.Hour))
		if err != nil {
			log.Fatalf("Error closing stale appointments: %v", err)
		}
		fmt.Printf("Closed %d stale appointments.\n", count)
	default:
		usage()
	}
}

func dispatch(store storage.Store, n models.Notification) {
	if err := store.SaveNotification(&n); err != nil {
		log.Fatalf("Error saving notification: %v", err)
	}
	if err := store.PublishNotification(n); err != nil {
		log.Fatalf("Notification saved but live push failed: %v", err)
	}
	fmt.Printf("Notification %d dispatched (scope %s).\n", n.ID, n.Scope)
}

func usage() {
	fmt.Println("Usage: admin <notify-user|notify-role|notify-all|list-online|close-stale> [args]")
	os.Exit(1)
}
