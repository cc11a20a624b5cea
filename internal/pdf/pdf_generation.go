package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator is an interface so handlers and services can be tested with a mock.
type Generator interface {
	GenerateProposal(data ProposalData) (string, error)
	GenerateContract(data ContractData) (string, error)
}

type DocumentGenerator struct {
	RootDir  string // storage root, e.g. "./files"
	FontPath string // path to a TTF, e.g. "assets/fonts/DejaVuSans.ttf"
	fontName string
}

type ProposalData struct {
	ContactName   string
	OpportunityID int64
	Value         float64
	StageName     string
	CreatedAt     time.Time
	Filename      string // base name only; generated when empty
}

type ContractData struct {
	ContactName   string
	OpportunityID int64
	Value         float64
	FunnelName    string
	CreatedAt     time.Time
	Filename      string
}

func NewDocumentGenerator(rootDir, fontPath string) *DocumentGenerator {
	return &DocumentGenerator{
		RootDir:  filepath.Clean(rootDir),
		FontPath: fontPath,
		fontName: "DejaVu",
	}
}

func (g *DocumentGenerator) GenerateProposal(data ProposalData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("proposal_opportunity_%d.pdf", data.OpportunityID)
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Proposal #%d", data.OpportunityID), false)
	pdf.SetAuthor("Prospera", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	g.addUTF8Font(pdf)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "FINANCIAL PLANNING PROPOSAL", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("No. PRO-%06d  /  %s",
		data.OpportunityID,
		data.CreatedAt.Format("02.01.2006"),
	)
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.sectionTitle(pdf, "Prepared for")
	g.kvLine(pdf, "Client", data.ContactName)
	g.kvLine(pdf, "Pipeline stage", data.StageName)
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Engagement value")
	g.kvLine(pdf, "Opportunity", fmt.Sprintf("%d", data.OpportunityID))
	g.kvLine(pdf, "Proposed value", fmt.Sprintf("%.2f BRL", data.Value))
	pdf.Ln(1)

	pdf.SetFont(g.fontName, "", 11)
	intro := "This proposal outlines the financial planning services offered by Prospera. " +
		"Scope, deliverables and payment schedule are detailed in the annexes and become binding " +
		"once the engagement contract is signed by both parties."
	pdf.MultiCell(0, 6, intro, "", "L", false)
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Scope of services")
	pdf.SetFont(g.fontName, "", 11)
	scope := []string{
		"1. Diagnosis of the client's current financial situation and goals.",
		"2. Preparation of a personalized financial plan covering budget, investments and protection.",
		"3. Periodic follow-up meetings to review plan execution and adjust recommendations.",
		"4. This proposal is valid for 30 days from the date above.",
	}
	for _, s := range scope {
		pdf.MultiCell(0, 6, s, "", "L", false)
	}
	pdf.Ln(2)
	g.hr(pdf)

	g.pageFooter(pdf)

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return "/" + filepath.ToSlash(filepath.Base(absPath)), nil
}

func (g *DocumentGenerator) GenerateContract(data ContractData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("contract_opportunity_%d.pdf", data.OpportunityID)
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Contract #%d", data.OpportunityID), false)
	pdf.SetAuthor("Prospera", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	g.addUTF8Font(pdf)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "ENGAGEMENT CONTRACT", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("No. PRO-%06d  /  %s",
		data.OpportunityID,
		data.CreatedAt.Format("02.01.2006"),
	)
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.sectionTitle(pdf, "Parties")
	g.kvLine(pdf, "Provider", "Prospera Financial Planning")
	g.kvLine(pdf, "Client", data.ContactName)
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Subject and value")
	g.kvLine(pdf, "Pipeline", data.FunnelName)
	g.kvLine(pdf, "Contract value", fmt.Sprintf("%.2f BRL", data.Value))
	pdf.Ln(1)

	pdf.SetFont(g.fontName, "", 11)
	terms := []string{
		"1. The provider will deliver financial planning services as described in the accepted proposal.",
		"2. The client agrees to pay the value stated above according to the agreed schedule.",
		"3. This contract takes effect on the date of signature by both parties.",
		"4. Disputes will be settled by negotiation and, failing that, under applicable law.",
	}
	for _, t := range terms {
		pdf.MultiCell(0, 6, t, "", "L", false)
	}
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Signatures")
	pdf.Ln(6)

	lineY := pdf.GetY()
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(80, 6, "Provider", "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(80, 6, "Client", "", 1, "L", false, 0, "")

	pdf.SetLineWidth(0.3)
	pdf.Line(20, lineY+10, 100, lineY+10)
	pdf.SetY(lineY + 12)
	pdf.SetX(20)
	pdf.Cell(80, 5, "(signature, full name)")
	pdf.SetY(lineY + 6)
	pdf.SetX(130)
	pdf.Line(130, lineY+10, 190, lineY+10)
	pdf.SetY(lineY + 12)
	pdf.SetX(130)
	pdf.Cell(80, 5, "(signature, full name)")

	g.pageFooter(pdf)

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return "/" + filepath.ToSlash(filepath.Base(absPath)), nil
}

// ===== helpers =====

func (g *DocumentGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *DocumentGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *DocumentGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func (g *DocumentGenerator) pageFooter(pdf *gofpdf.Fpdf) {
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Page %d/{nb}", pdf.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})
}

func (g *DocumentGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	filename = filepath.Base(filename) // never allow nesting
	return filepath.Join(g.RootDir, filename), nil
}

func (g *DocumentGenerator) addUTF8Font(pdf *gofpdf.Fpdf) {
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}
