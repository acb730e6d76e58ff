package postgres

import (
	"io"
	"log/slog"

	"github.com/pashagolub/pgxmock/v4"
)

const pgxmockExpectationsNotMetMsg = "pgxmock expectations were not met"

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ DBPool = (pgxmock.PgxPoolIface)(nil)
