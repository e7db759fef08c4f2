package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const defaultAPIURL = "http://localhost:8080/api/v1"

// Demo players, shaped like a loose upstream feed: some numbers arrive as
// strings and percentages with a trailing "%".
var players = []map[string]any{
	{
		"name": "Sinner", "full_name": "Jannik Sinner", "current_rank": 1, "elo_rating": 2180,
		"hard_elo": 2210, "clay_elo": 2090, "grass_elo": 2120,
		"first_serve_win_pct": "77.5%", "second_serve_win_pct": 56.1,
		"first_return_win_pct": 34.0, "second_return_win_pct": 55.2,
		"break_points_saved_pct": 67.0, "break_points_converted_pct": 44.1,
		"hard_court_win_pct": 86, "clay_court_win_pct": 74, "grass_court_win_pct": 80,
		"recent_form": []string{"W", "W", "W", "L", "W"}, "nationality": "ita",
	},
	{
		"name": "Alcaraz", "full_name": "Carlos Alcaraz", "current_rank": "2", "elo_rating": "2150",
		"hard_elo": 2110, "clay_elo": 2160, "grass_elo": 2170,
		"first_serve_win_pct": 74.8, "second_serve_win_pct": "55.0",
		"first_return_win_pct": 34.9, "second_return_win_pct": 55.8,
		"break_points_saved_pct": 65.2, "break_points_converted_pct": 43.0,
		"hard_court_win_pct": 80, "clay_court_win_pct": 84, "grass_court_win_pct": 88,
		"recent_form": []string{"W", "L", "W", "W", "W"}, "nationality": "esp",
	},
	{
		"name": "Zverev", "full_name": "Alexander Zverev", "current_rank": 3, "elo_rating": 2040,
		"first_serve_win_pct": 78.1, "second_serve_win_pct": 53.3,
		"first_return_win_pct": 29.5, "second_return_win_pct": 50.9,
		"hard_court_win_pct": 72, "clay_court_win_pct": 76, "grass_court_win_pct": "-",
		"recent_form": []string{"L", "W", "W", "L", "W"}, "nationality": "GER",
	},
	{
		"name": "Draper", "full_name": "Jack Draper", "current_rank": 5,
		"first_serve_win_pct": 76.0, "second_serve_win_pct": 52.0,
		"grass_court_win_pct": 70,
		"recent_form": []string{"W", "W", "L"}, "nationality": "GBR",
	},
}

func main() {
	apiURL := flag.String("api", defaultAPIURL, "base URL of the prediction API")
	analyze := flag.Bool("analyze", true, "analyze a demo match between the first two players")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	ids := make([]string, 0, len(players))
	for _, p := range players {
		var created struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		status, err := post(client, *apiURL+"/players", p, &created)
		if err != nil {
			log.Fatalf("Failed to seed player %v: %v", p["name"], err)
		}
		fmt.Printf("Status: %d  player %s -> %s\n", status, created.Name, created.ID)
		ids = append(ids, created.ID)
	}

	if !*analyze || len(ids) < 2 {
		return
	}

	req := map[string]any{
		"player1_id":      ids[0],
		"player2_id":      ids[1],
		"surface":         "hard",
		"tournament_name": "Demo Open",
		"round":           "F",
		"best_of":         5,
		"odds":            map[string]float64{"player1": 1.8, "player2": 2.05},
	}
	var analysis json.RawMessage
	status, err := post(client, *apiURL+"/matches/analyze", req, &analysis)
	if err != nil {
		log.Fatalf("Failed to analyze demo match: %v", err)
	}
	fmt.Printf("Status: %d\nResponse: %s\n", status, string(analysis))
}

func post(client *http.Client, url string, body any, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal: %w", err)
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusCreated {
		return resp.StatusCode, fmt.Errorf("unexpected status %s: %s", resp.Status, string(raw))
	}
	return resp.StatusCode, json.Unmarshal(raw, out)
}
