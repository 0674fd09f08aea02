package usecase

import (
	"fmt"
	"strings"

	"github.com/vero/backend/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Advisory reply length caps written into the prompts. The generation
// service is not forced to honour them.
const (
	verdictReplyCap    = 300
	unfamiliarReplyCap = 100
)

// PromptConfig holds configuration for the prompt builder
type PromptConfig struct {
	// Format, when set, asks the model to format its reply (e.g. "Markdown").
	Format string
}

// PromptBuilder renders verdict-specific instructions for the explanation model.
// Render is a pure function of its inputs.
type PromptBuilder struct {
	format string
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder(config PromptConfig) *PromptBuilder {
	return &PromptBuilder{format: config.Format}
}

// Render builds the prompt for a submission and its verification result.
func (b *PromptBuilder) Render(submission domain.Submission, result domain.VerificationResult) (string, error) {
	category := submission.Category()
	if !category.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", domain.ErrInvalidRequest, category)
	}

	var sb strings.Builder

	switch result.Verdict {
	case domain.VerdictFake:
		writeFakeSection(&sb, category, submission.PromptFields())
	case domain.VerdictReal:
		writeRealSection(&sb, category, submission.PromptFields())
	case domain.VerdictUnfamiliar, domain.VerdictNoMatch, domain.VerdictError:
		writeUnfamiliarSection(&sb, category, result.Reason)
		return sb.String(), nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownVerdict, result.Verdict)
	}

	directive, err := languageDirective(submission.LanguageTag())
	if err != nil {
		return "", err
	}
	sb.WriteString(directive)
	if b.format != "" {
		fmt.Fprintf(&sb, "Format the reply as %s.\n", b.format)
	}

	return sb.String(), nil
}

func writeFakeSection(sb *strings.Builder, category domain.Category, fields []domain.Field) {
	switch category {
	case domain.CategoryDrug:
		sb.WriteString("A drug product submitted by the user is suspected to be fake.\n")
		sb.WriteString("Explain the issue in clear, simple terms and avoid medical jargon.\n")
		sb.WriteString("Use a calm but serious tone to warn the user.\n")
	case domain.CategoryBaby:
		sb.WriteString("A baby product has been submitted and is suspected to be counterfeit.\n")
		sb.WriteString("Use a calm, reassuring tone, but issue a clear warning if the product is potentially unsafe.\n")
	}
	writeFields(sb, fields)
	fmt.Fprintf(sb, "Keep the entire explanation within %d characters.\n\n", verdictReplyCap)

	sb.WriteString("1. Fake vs Real Explanation:\n")
	sb.WriteString("- Briefly state why this product is flagged as fake and compare it with a real version, pinpointing the key differences.\n")

	sb.WriteString("\n2. Health Risk Warnings:\n")
	switch category {
	case domain.CategoryDrug:
		sb.WriteString("- Describe in plain language what can happen if someone uses a fake version, considering the packaging described.\n")
	case domain.CategoryBaby:
		sb.WriteString("- Based on the product type, age group, or packaging, briefly explain possible dangers of using a fake version.\n")
	}

	sb.WriteString("\n3. Safer Alternatives:\n")
	switch category {
	case domain.CategoryDrug:
		sb.WriteString("- Recommend 1-3 verified, safer drugs that treat the same condition.\n")
	case domain.CategoryBaby:
		sb.WriteString("- Recommend 1-3 similar, verified baby products from trusted brands suitable for the same age group.\n")
	}
	sb.WriteString("- Keep suggestions short and practical.\n")
}

func writeRealSection(sb *strings.Builder, category domain.Category, fields []domain.Field) {
	switch category {
	case domain.CategoryDrug:
		sb.WriteString("A drug product submitted by the user has been verified as authentic.\n")
		sb.WriteString("Speak in simple, reassuring language, like explaining to a friend, and avoid medical jargon.\n")
	case domain.CategoryBaby:
		sb.WriteString("A baby product has been reviewed and verified as authentic.\n")
		sb.WriteString("Share a calm and reassuring response, like a caregiver would.\n")
	}
	writeFields(sb, fields)
	fmt.Fprintf(sb, "Keep the entire explanation within %d characters.\n\n", verdictReplyCap)

	sb.WriteString("Include:\n")
	sb.WriteString("- A short product summary\n")
	sb.WriteString("- One key benefit\n")
	sb.WriteString("- Two bullet-point safety precautions\n")
	sb.WriteString("- Two short frequently asked questions with helpful answers\n")
}

func writeUnfamiliarSection(sb *strings.Builder, category domain.Category, reason string) {
	switch category {
	case domain.CategoryDrug:
		sb.WriteString("We couldn't confirm if this drug is real or fake.\n")
	case domain.CategoryBaby:
		sb.WriteString("This product's authenticity could not be confidently verified.\n")
	}
	fmt.Fprintf(sb, "Reason: %s\n", reason)
	sb.WriteString("Advise the user to inspect the packaging, NAFDAC registration number, and expiry date, and to consult support if unsure.\n")
	fmt.Fprintf(sb, "Stay under %d characters. Keep it cautious, calm, and helpful.\n", unfamiliarReplyCap)
}

func writeFields(sb *strings.Builder, fields []domain.Field) {
	sb.WriteString("Use the following fields to guide your explanation:\n")
	for _, f := range fields {
		fmt.Fprintf(sb, "- %s: %s\n", f.Label, f.Value)
	}
}

// languageDirective returns the reply-language instruction for a BCP-47 tag.
// English and empty tags need no directive.
func languageDirective(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", nil
	}

	parsed, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidLanguage, tag)
	}

	base, _ := parsed.Base()
	if base.String() == "en" {
		return "", nil
	}

	name := display.English.Tags().Name(parsed)
	if name == "" {
		name = parsed.String()
	}
	return fmt.Sprintf("Respond in %s.\n", name), nil
}

// ValidateLanguage reports whether tag is acceptable as a reply language
func ValidateLanguage(tag string) error {
	_, err := languageDirective(tag)
	return err
}
