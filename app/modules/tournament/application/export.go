package tournamentservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tournamentdomain "github.com/Black-And-White-Club/cutline/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/cutline/app/modules/tournament/infrastructure/repositories"
	"github.com/xuri/excelize/v2"
)

// RoundsSheet names the per-cut sheet of an exported workbook.
const RoundsSheet = "Rounds"

// ExportStandings renders the session's standings and cut history as XLSX.
func (s *TournamentService) ExportStandings(ctx context.Context, sessionID string) ([]byte, error) {
	sess, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	return BuildStandingsWorkbook(sess.Tournament, sess.History)
}

// BuildStandingsWorkbook writes the ranked field to the first sheet and one
// row per resolved cut to the Rounds sheet.
func BuildStandingsWorkbook(t tournamentdomain.Tournament, history []tournamentdomain.RoundResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	standings := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"Position", "Player", "Status", "Eliminated In", "Total"}
	for r := 1; r <= t.Variant.TotalRounds; r++ {
		header = append(header, "R"+strconv.Itoa(r))
	}
	if err := writeRow(f, standings, 1, header); err != nil {
		return nil, err
	}

	for i, st := range t.Standings() {
		p := st.Player
		status := "Active"
		eliminatedIn := ""
		if p.IsEliminated {
			status = "Eliminated"
			eliminatedIn = strconv.Itoa(*p.EliminatedAtRound)
		} else if t.Finished() {
			status = "Winner"
		}
		row := []interface{}{st.Position, p.Name, status, eliminatedIn, p.TotalScore}
		for _, score := range p.RoundScores {
			row = append(row, score)
		}
		if err := writeRow(f, standings, i+2, row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(RoundsSheet); err != nil {
		return nil, fmt.Errorf("failed to add rounds sheet: %w", err)
	}
	if err := writeRow(f, RoundsSheet, 1, []interface{}{"Round", "Target", "Survivors", "Cutline", "Tie", "Eliminated"}); err != nil {
		return nil, err
	}
	for i, rr := range history {
		eliminated := make([]string, len(rr.Eliminated))
		for j, id := range rr.Eliminated {
			eliminated[j] = strconv.Itoa(int(id))
		}
		row := []interface{}{rr.Round, rr.SurvivorTarget, rr.Survivors, rr.Cutline, strconv.FormatBool(rr.TieDetected), strings.Join(eliminated, ",")}
		if err := writeRow(f, RoundsSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
