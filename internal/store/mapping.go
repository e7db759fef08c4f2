package store

// tableMapping translates between canonical field names and the column
// names of a remote table.
type tableMapping struct {
	table  string
	fields []string          // canonical names, one column each
	rename map[string]string // canonical -> remote, where they differ
	// aliases are alternative remote spellings folded into a canonical
	// field on read when the canonical column is absent or NULL.
	aliases map[string]string
	// text are scalar text columns where an exact string filter is
	// pushed down to SQL.
	text map[string]bool
	// ordered are numeric or timestamp columns whose SQL ordering agrees
	// with the in-memory ordering.
	ordered map[string]bool
}

func (m tableMapping) column(field string) string {
	if col, ok := m.rename[field]; ok {
		return col
	}
	return field
}

// columns returns every remote column in declaration order.
func (m tableMapping) columns() []string {
	cols := make([]string, len(m.fields))
	for i, f := range m.fields {
		cols[i] = m.column(f)
	}
	return cols
}

// ToRemote writes every known column; fields absent from the record become
// NULL so that a full-row write never leaves stale values behind.
func (m tableMapping) ToRemote(fields map[string]any) map[string]any {
	out := make(map[string]any, len(m.fields))
	for _, f := range m.fields {
		out[m.column(f)] = fields[f]
	}
	return out
}

// FromRemote converts a remote row to canonical fields, dropping NULLs.
func (m tableMapping) FromRemote(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for _, f := range m.fields {
		if v, ok := row[m.column(f)]; ok && v != nil {
			out[f] = v
		}
	}
	for remote, canonical := range m.aliases {
		if _, have := out[canonical]; have {
			continue
		}
		if v, ok := row[remote]; ok && v != nil {
			out[canonical] = v
		}
	}
	return out
}

var playersTable = tableMapping{
	table: "players",
	fields: []string{
		"id", "name", "full_name", "current_rank",
		"elo_rating", "hard_elo", "clay_elo", "grass_elo",
		"first_serve_win_pct", "second_serve_win_pct",
		"first_return_win_pct", "second_return_win_pct",
		"break_points_saved_pct", "break_points_converted_pct",
		"hard_court_win_pct", "clay_court_win_pct", "grass_court_win_pct",
		"surface_records", "recent_form", "nationality", "data_source",
		"created_at", "updated_at",
	},
	rename:  map[string]string{"current_rank": "rank"},
	aliases: map[string]string{"display_name": "name", "ranking": "current_rank"},
	text:    set("id", "name", "full_name", "nationality", "data_source"),
	ordered: set("current_rank", "elo_rating", "hard_elo", "clay_elo", "grass_elo", "created_at", "updated_at"),
}

var matchesTable = tableMapping{
	table: "matches",
	fields: []string{
		"id", "player1_id", "player2_id", "surface", "tournament_name", "round",
		"location", "best_of", "status", "utc_start", "winner_id", "created_at",
	},
	rename:  map[string]string{"player1_id": "player_a_id", "player2_id": "player_b_id"},
	text:    set("id", "player1_id", "player2_id", "surface", "status", "tournament_name", "winner_id"),
	ordered: set("best_of", "utc_start", "created_at"),
}

var predictionsTable = tableMapping{
	table: "predictions",
	fields: []string{
		"id", "match_id", "model_type", "player1_id", "player2_id",
		"player1_win_probability", "player2_win_probability",
		"predicted_winner_id", "confidence_level", "predicted_sets",
		"prob_straight_sets", "prob_deciding_set", "point_by_point_data",
		"key_factors", "component_predictions", "actual_winner_id",
		"was_correct", "completed_at", "created_at",
	},
	rename: map[string]string{
		"player1_id":              "player_a_id",
		"player2_id":              "player_b_id",
		"player1_win_probability": "win_prob_a",
		"player2_win_probability": "win_prob_b",
	},
	text:    set("id", "match_id", "model_type", "predicted_winner_id", "confidence_level"),
	ordered: set("player1_win_probability", "player2_win_probability", "created_at", "completed_at"),
}

var complianceTable = tableMapping{
	table:   "compliance",
	fields:  []string{"id", "data_source", "status", "notes", "checked_at", "created_at"},
	text:    set("id", "data_source", "status"),
	ordered: set("checked_at", "created_at"),
}

var weightsTable = tableMapping{
	table: "model_weights",
	fields: []string{
		"id", "name", "version",
		"ranking_weight", "serve_weight", "return_weight", "surface_weight",
		"h2h_weight", "form_weight", "fatigue_weight", "injury_weight",
		"is_active", "created_at",
	},
	text:    set("id", "name"),
	ordered: set("version", "created_at"),
}

var feedbackTable = tableMapping{
	table: "model_feedback",
	fields: []string{
		"id", "prediction_id", "match_id", "model_type", "was_correct",
		"confidence_level", "predicted_probability", "calibration_error",
		"surface", "feature_snapshot", "source", "notes", "created_at",
	},
	text:    set("id", "prediction_id", "match_id", "model_type", "source", "surface"),
	ordered: set("predicted_probability", "calibration_error", "created_at"),
}

func set(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}
