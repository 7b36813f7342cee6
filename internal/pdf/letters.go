package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator — interface so services can mock letter generation in tests.
type Generator interface {
	GenerateAdmissionLetter(data AdmissionLetterData) (string, error)
	GenerateEmploymentLetter(data EmploymentLetterData) (string, error)
}

// LetterGenerator writes official letters as PDF files under RootDir.
type LetterGenerator struct {
	RootDir    string // storage root, e.g. "./files"
	SchoolName string
	fontName   string
}

type AdmissionLetterData struct {
	StudentName string
	ProfileID   int64
	Program     string
	Level       string
	Intake      string
	TuitionFee  float64
	AdmittedAt  time.Time
	Filename    string // base name only; generated when empty
}

type EmploymentLetterData struct {
	StaffName  string
	ProfileID  int64
	Position   string
	Degree     string
	EmployedAt time.Time
	Filename   string
}

func NewLetterGenerator(rootDir, schoolName string) *LetterGenerator {
	if schoolName == "" {
		schoolName = "CampusCore School"
	}
	return &LetterGenerator{
		RootDir:    filepath.Clean(rootDir),
		SchoolName: schoolName,
		fontName:   "Helvetica",
	}
}

func (g *LetterGenerator) GenerateAdmissionLetter(data AdmissionLetterData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("admission_letter_%d.pdf", data.ProfileID)
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Admission Letter %d", data.ProfileID), false)
	pdf.SetAuthor(g.SchoolName, false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// ===== header
	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "LETTER OF ADMISSION", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("Ref. ADM-%06d   %s", data.ProfileID, data.AdmittedAt.Format("02 Jan 2006"))
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)

	pdf.Ln(3)

	g.sectionTitle(pdf, "Admission details")
	g.kvLine(pdf, "Student", data.StudentName)
	g.kvLine(pdf, "Program", data.Program)
	g.kvLine(pdf, "Level", data.Level)
	g.kvLine(pdf, "Intake", data.Intake)
	g.kvLine(pdf, "Tuition fee", fmt.Sprintf("%.2f", data.TuitionFee))
	pdf.Ln(2)
	g.hr(pdf)

	pdf.SetFont(g.fontName, "", 11)
	body := fmt.Sprintf(
		"Dear %s, we are pleased to inform you that you have been offered admission to %s "+
			"for the %s intake. Please report to the admissions office with this letter and a "+
			"valid identification document to complete your registration.",
		data.StudentName, g.SchoolName, data.Intake,
	)
	pdf.MultiCell(0, 6, body, "", "L", false)
	pdf.Ln(2)
	g.hr(pdf)

	g.signatureBlock(pdf, "Registrar")

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return "/files/" + filepath.ToSlash(filepath.Base(absPath)), nil
}

func (g *LetterGenerator) GenerateEmploymentLetter(data EmploymentLetterData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("employment_letter_%d.pdf", data.ProfileID)
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Employment Letter %d", data.ProfileID), false)
	pdf.SetAuthor(g.SchoolName, false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "CONFIRMATION OF EMPLOYMENT", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("Ref. EMP-%06d   %s", data.ProfileID, data.EmployedAt.Format("02 Jan 2006"))
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)

	pdf.Ln(3)

	g.sectionTitle(pdf, "Employment details")
	g.kvLine(pdf, "Name", data.StaffName)
	g.kvLine(pdf, "Position", data.Position)
	if data.Degree != "" {
		g.kvLine(pdf, "Qualification", data.Degree)
	}
	g.kvLine(pdf, "Employed since", data.EmployedAt.Format("02 Jan 2006"))
	pdf.Ln(2)
	g.hr(pdf)

	pdf.SetFont(g.fontName, "", 11)
	body := fmt.Sprintf(
		"This is to confirm that %s is employed by %s in the position stated above. "+
			"This letter is issued at the request of the employee for official purposes.",
		data.StaffName, g.SchoolName,
	)
	pdf.MultiCell(0, 6, body, "", "L", false)
	pdf.Ln(2)
	g.hr(pdf)

	g.signatureBlock(pdf, "Head of Administration")

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return "/files/" + filepath.ToSlash(filepath.Base(absPath)), nil
}

// ===== helpers =====

func (g *LetterGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *LetterGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *LetterGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func (g *LetterGenerator) signatureBlock(pdf *gofpdf.Fpdf, signer string) {
	g.sectionTitle(pdf, "Signature")
	pdf.Ln(6)

	lineY := pdf.GetY()
	pdf.SetLineWidth(0.3)
	pdf.Line(20, lineY+10, 100, lineY+10)
	pdf.SetY(lineY + 12)
	pdf.SetX(20)
	pdf.SetFont(g.fontName, "", 10)
	pdf.Cell(80, 5, signer+", "+g.SchoolName)
}

func (g *LetterGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	filename = filepath.Base(filename) // keep callers inside RootDir
	return filepath.Join(g.RootDir, filename), nil
}
