// Command quizcli is a terminal front end for the quiz engine.
//
// It restores any persisted session at startup, then reads commands from
// stdin:
//
//	login <email> <password>
//	register <email> <username> <password>
//	whoami
//	genres
//	quiz <genre-id>   — run a genre attempt
//	review            — run an incorrect-question review attempt
//	stats
//	history
//	logout
//	quit
//
// Configuration comes from the environment (a .env file is honored):
//
//	QUIZKIT_API_URL      backend base URL (default http://localhost:8000)
//	QUIZKIT_REDIS_ADDR   Redis address; when unset an embedded miniredis
//	                     is used and the session does not survive exit
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/alicebob/miniredis/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/elearnlabs/quizkit"
)

func main() {
	log.SetFlags(0)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatal("load .env: ", err)
	}

	cfg := quizkit.LoadConfigFromEnv()

	addr := os.Getenv("QUIZKIT_REDIS_ADDR")
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			log.Fatal("embedded redis: ", err)
		}
		defer mr.Close()
		addr = mr.Addr()
		fmt.Println("no QUIZKIT_REDIS_ADDR set; session will not survive exit")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	client, err := quizkit.New().
		WithConfig(cfg).
		WithRedis(rdb).
		Build()
	if err != nil {
		log.Fatal("build client: ", err)
	}

	ctx := context.Background()
	session := client.Session()
	if err := session.Restore(ctx); err != nil {
		log.Fatal("restore session: ", err)
	}
	printStatus(session)

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			break
		}
		args := strings.Fields(in.Text())
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "login":
			if len(args) != 3 {
				fmt.Println("usage: login <email> <password>")
				continue
			}
			err := session.Login(ctx, quizkit.LoginCredentials{Email: args[1], Password: args[2]})
			report(err)
			printStatus(session)

		case "register":
			if len(args) != 4 {
				fmt.Println("usage: register <email> <username> <password>")
				continue
			}
			err := session.Register(ctx, quizkit.RegisterCredentials{
				Email:           args[1],
				Username:        args[2],
				Password:        args[3],
				PasswordConfirm: args[3],
			})
			report(err)
			printStatus(session)

		case "whoami":
			printStatus(session)

		case "genres":
			genres, err := client.Catalog().ListGenres(ctx)
			if err != nil {
				report(err)
				continue
			}
			for _, g := range genres {
				fmt.Printf("  %s  %s (%d questions)\n", g.ID, g.Name, g.QuestionCount)
			}

		case "quiz":
			if len(args) != 2 {
				fmt.Println("usage: quiz <genre-id>")
				continue
			}
			engine := client.NewQuiz()
			if err := engine.StartGenre(ctx, args[1]); err != nil {
				report(err)
				continue
			}
			runAttempt(ctx, in, engine)

		case "review":
			engine := client.NewQuiz()
			if err := engine.StartReview(ctx); err != nil {
				if errors.Is(err, quizkit.ErrEmptyQuestionSet) {
					fmt.Println("nothing to review")
				} else {
					report(err)
				}
				continue
			}
			runAttempt(ctx, in, engine)

		case "stats":
			stats, err := client.Statistics(ctx)
			if err != nil {
				report(err)
				continue
			}
			fmt.Printf("  sessions: %d  questions: %d  correct: %d  accuracy: %.1f%%  avg score: %.1f\n",
				stats.TotalSessions, stats.TotalQuestions, stats.CorrectAnswers,
				stats.AccuracyRate, stats.AverageScore)

		case "history":
			summaries, err := client.History(ctx, quizkit.HistoryFilter{Limit: 10})
			if err != nil {
				report(err)
				continue
			}
			for _, s := range summaries {
				fmt.Printf("  %s  %-6s  %s  %d/%d (%.0f%%)\n",
					s.StartedAt.Format("2006-01-02 15:04"), s.SessionType, s.GenreName,
					s.CorrectAnswers, s.TotalQuestions, s.ScorePercentage)
			}

		case "logout":
			report(session.Logout(ctx))
			printStatus(session)

		case "quit", "exit":
			return

		default:
			fmt.Println("unknown command:", args[0])
		}
	}
}

// runAttempt drives one attempt to completion on stdin, one answer per
// question.
func runAttempt(ctx context.Context, in *bufio.Scanner, engine *quizkit.QuizEngine) {
	attempt, ok := engine.Attempt()
	if !ok {
		return
	}
	total := len(attempt.Questions)

	for {
		q, ok := attempt.Current()
		if !ok {
			return
		}
		fmt.Printf("\n[%d/%d] %s\n", attempt.Cursor()+1, total, q.Body)
		if q.SupportingText != "" {
			fmt.Println(q.SupportingText)
		}
		choices := q.AnswerableChoices()
		for i, c := range choices {
			fmt.Printf("  %d) %s\n", i+1, c.Content)
		}

		fmt.Print("answer> ")
		if !in.Scan() {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err != nil || n < 1 || n > len(choices) {
			fmt.Println("pick a number between 1 and", len(choices))
			continue
		}

		result, err := engine.Submit(ctx, q.ID, choices[n-1].ID)
		if err != nil {
			report(err)
			continue
		}
		if result.Record.IsCorrect {
			fmt.Println("correct")
		} else {
			fmt.Println("incorrect")
			if q.Clarification != "" {
				fmt.Println(q.Clarification)
			}
		}
		if result.Completed {
			fmt.Printf("\ndone: score %d%%\n", result.Score)
			if result.SaveErr != nil {
				fmt.Println("warning: result not saved:", result.SaveErr)
			}
			return
		}
	}
}

func printStatus(session *quizkit.Session) {
	if id, ok := session.Identity(); ok {
		staff := ""
		if id.IsStaff {
			staff = " (staff)"
		}
		fmt.Printf("signed in as %s <%s>%s\n", id.Username, id.Email, staff)
		return
	}
	fmt.Println("not signed in, status:", session.Status())
}

func report(err error) {
	if err == nil {
		fmt.Println("ok")
		return
	}
	if ve, ok := quizkit.AsValidationError(err); ok {
		fmt.Println("invalid input:", ve)
		return
	}
	fmt.Println("error:", err)
}
