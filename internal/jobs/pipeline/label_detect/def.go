package label_detect

import (
	"gorm.io/gorm"

	"github.com/clipsmith/clipsmith-backend/internal/clients/gcp"
	mediarepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/media"
	"github.com/clipsmith/clipsmith-backend/internal/ingestion/labelimport"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
)

type Pipeline struct {
	db       *gorm.DB
	log      *logger.Logger
	media    mediarepos.MediaAssetRepo
	video    gcp.Video
	importer *labelimport.Importer
}

func New(
	db *gorm.DB,
	baseLog *logger.Logger,
	media mediarepos.MediaAssetRepo,
	video gcp.Video,
	importer *labelimport.Importer,
) *Pipeline {
	return &Pipeline{
		db:       db,
		log:      baseLog.With("job", "label_detect"),
		media:    media,
		video:    video,
		importer: importer,
	}
}

func (p *Pipeline) Type() string { return "label_detect" }
