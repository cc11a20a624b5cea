package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"prospera/internal/models"
	"prospera/internal/pdf"
	"prospera/internal/repositories"
)

// DocumentService generates proposal and contract PDFs for opportunities
// and keeps track of the produced files.
type DocumentService struct {
	DocRepo       *repositories.DocumentRepository
	ContactRepo   *repositories.ContactRepository
	Opportunities OpportunityStore
	Funnels       FunnelStore

	FilesRoot string        // storage root (cfg.Files.RootDir)
	PDFGen    pdf.Generator // generator (internal/pdf)
}

func NewDocumentService(
	docRepo *repositories.DocumentRepository,
	contactRepo *repositories.ContactRepository,
	opportunities OpportunityStore,
	funnels FunnelStore,
	filesRoot string,
	pdfGen pdf.Generator,
) *DocumentService {
	return &DocumentService{
		DocRepo:       docRepo,
		ContactRepo:   contactRepo,
		Opportunities: opportunities,
		Funnels:       funnels,
		FilesRoot:     filesRoot,
		PDFGen:        pdfGen,
	}
}

// GenerateDocument renders a PDF of the given kind for the opportunity and
// records it. A proposal needs a positive proposal value; a contract needs
// a won opportunity in a contract-generating pipeline.
func (s *DocumentService) GenerateDocument(ctx context.Context, opportunityID int64, kind models.DocumentKind, userID int64) (*models.Document, error) {
	if s.PDFGen == nil {
		return nil, validationf("kind", "pdf generator not configured")
	}
	opp, err := s.Opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if opp == nil {
		return nil, repositories.ErrNotFound
	}
	contact, err := s.ContactRepo.GetByID(opp.ContactID)
	if err != nil {
		return nil, err
	}
	contactName := ""
	if contact != nil {
		contactName = contact.Name
	}

	var relPath string
	switch kind {
	case models.DocumentProposal:
		if opp.ProposalValue == nil || *opp.ProposalValue <= 0 {
			return nil, validationf("proposal_value", "opportunity %d has no proposal value", opp.ID)
		}
		stages, serr := s.Funnels.GetStages(ctx, opp.CurrentFunnelID)
		if serr != nil {
			return nil, serr
		}
		stageName := ""
		if st := findStage(stages, opp.CurrentStageID); st != nil {
			stageName = st.Name
		}
		relPath, err = s.PDFGen.GenerateProposal(pdf.ProposalData{
			ContactName:   contactName,
			OpportunityID: opp.ID,
			Value:         *opp.ProposalValue,
			StageName:     stageName,
			CreatedAt:     opp.UpdatedAt,
		})
	case models.DocumentContract:
		if opp.Status != models.OpportunityWon {
			return nil, validationf("status", "contract requires a won opportunity, got %q", opp.Status)
		}
		funnel, ferr := s.Funnels.GetByID(ctx, opp.CurrentFunnelID)
		if ferr != nil {
			return nil, ferr
		}
		if funnel == nil || !funnel.GeneratesContract {
			return nil, validationf("funnel_id", "pipeline does not generate contracts")
		}
		value := 0.0
		if opp.ProposalValue != nil {
			value = *opp.ProposalValue
		}
		relPath, err = s.PDFGen.GenerateContract(pdf.ContractData{
			ContactName:   contactName,
			OpportunityID: opp.ID,
			Value:         value,
			FunnelName:    funnel.Name,
			CreatedAt:     opp.UpdatedAt,
		})
	default:
		return nil, validationf("kind", "unsupported document kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		OpportunityID: opp.ID,
		Kind:          kind,
		FilePath:      relPath,
		CreatedBy:     userID,
	}
	id, err := s.DocRepo.Create(doc)
	if err != nil {
		return nil, err
	}
	doc.ID = id
	return doc, nil
}

func (s *DocumentService) GetDocument(id int64) (*models.Document, error) {
	doc, err := s.DocRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, repositories.ErrNotFound
	}
	return doc, nil
}

func (s *DocumentService) ListByOpportunity(opportunityID int64) ([]*models.Document, error) {
	return s.DocRepo.ListByOpportunity(opportunityID)
}

func (s *DocumentService) ListDocuments(limit, offset int) ([]*models.Document, error) {
	return s.DocRepo.List(limit, offset)
}

func (s *DocumentService) DeleteDocument(id int64) error {
	doc, err := s.DocRepo.GetByID(id)
	if err != nil {
		return err
	}
	if doc == nil {
		return repositories.ErrNotFound
	}
	if abs, _, ferr := s.resolveFile(doc); ferr == nil {
		_ = os.Remove(abs)
	}
	return s.DocRepo.Delete(id)
}

// ResolveFileForHTTP returns the absolute path and download name for a
// stored document, for use with inline/attachment responses.
func (s *DocumentService) ResolveFileForHTTP(docID int64) (string, string, error) {
	doc, err := s.DocRepo.GetByID(docID)
	if err != nil {
		return "", "", err
	}
	if doc == nil {
		return "", "", repositories.ErrNotFound
	}
	return s.resolveFile(doc)
}

func (s *DocumentService) resolveFile(doc *models.Document) (absPath, fileName string, err error) {
	// Only a bare file name (or a "/name.pdf" style relative path) is stored.
	rel := strings.TrimSpace(doc.FilePath)
	rel = strings.ReplaceAll(rel, "\\", "/")
	rel = strings.TrimPrefix(rel, "/")
	rel = strings.TrimPrefix(rel, "files/")
	rel = filepath.Base(rel) // no nesting

	if rel == "" || rel == "." {
		return "", "", repositories.ErrNotFound
	}

	abs := filepath.Join(s.FilesRoot, rel)
	info, statErr := os.Stat(abs)
	if statErr != nil || info.IsDir() {
		return "", "", repositories.ErrNotFound
	}
	return abs, filepath.Base(abs), nil
}
