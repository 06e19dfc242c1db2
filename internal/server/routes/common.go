package routes

import (
	"github.com/inkgraph/backend/internal/server/middleware"
	"github.com/inkgraph/backend/internal/util"
	"github.com/inkgraph/backend/pkg/store"
	graphstorage "github.com/inkgraph/backend/pkg/store/pgx"
	s3store "github.com/inkgraph/backend/pkg/store/s3"
)

// corpusStore picks the chapter backend: S3 when CORPUS_BACKEND=s3,
// otherwise the wiki database.
func corpusStore(c *middleware.AppContext) store.CorpusStore {
	if util.GetEnvString("CORPUS_BACKEND", "") == "s3" {
		return s3store.NewCorpusStore(c.App.S3)
	}
	return graphstorage.NewWikiDBStorageWithConnection(c.App.DBConn, c.App.AiClient)
}

func wikiStorage(c *middleware.AppContext) *graphstorage.WikiDBStorage {
	return graphstorage.NewWikiDBStorageWithConnection(c.App.DBConn, c.App.AiClient)
}
