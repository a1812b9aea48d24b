package tui

import (
	"strings"

	"github.com/tinytelemetry/stockroom/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// formField identifies a focusable area of the products page.
type formField int

const (
	fieldName formField = iota
	fieldPrice
	fieldReference
	fieldPager

	fieldCount = 4
)

func (f formField) isInput() bool {
	return f >= fieldName && f <= fieldReference
}

// ProductForm is the add-product form. Validity lives in the shared
// FormState; the form only owns the inputs.
type ProductForm struct {
	inputs [3]textinput.Model
	state  *FormState
}

// NewProductForm builds the three inputs bound to state.
func NewProductForm(state *FormState) *ProductForm {
	f := &ProductForm{state: state}
	placeholders := [3]string{"Product name", "0.00", "SKU-0001"}
	limits := [3]int{120, 16, 64}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		in.CharLimit = limits[i]
		in.Width = 28
		f.inputs[i] = in
	}
	return f
}

// Focus moves the cursor to field, blurring the others. Non-input fields
// blur everything.
func (f *ProductForm) Focus(field formField) tea.Cmd {
	var cmd tea.Cmd
	for i := range f.inputs {
		if formField(i) == field {
			cmd = f.inputs[i].Focus()
			continue
		}
		f.inputs[i].Blur()
	}
	return cmd
}

// Update forwards msg to the input for field and revalidates it. Editing
// the reference invalidates any earlier server verdict.
func (f *ProductForm) Update(field formField, msg tea.Msg) tea.Cmd {
	if !field.isInput() {
		return nil
	}
	before := f.inputs[field].Value()

	var cmd tea.Cmd
	f.inputs[field], cmd = f.inputs[field].Update(msg)

	value := f.inputs[field].Value()
	switch field {
	case fieldName:
		f.state.ValidateName(value)
	case fieldPrice:
		f.state.ValidatePrice(value)
	case fieldReference:
		if value != before {
			f.state.SetReferenceValidity(false)
		}
	}
	return cmd
}

// SetValue replaces the text of a field and revalidates it.
func (f *ProductForm) SetValue(field formField, value string) {
	if !field.isInput() {
		return
	}
	f.inputs[field].SetValue(value)
	switch field {
	case fieldName:
		f.state.ValidateName(value)
	case fieldPrice:
		f.state.ValidatePrice(value)
	case fieldReference:
		f.state.SetReferenceValidity(false)
	}
}

// Values returns the trimmed form contents.
func (f *ProductForm) Values() model.ProductForm {
	return model.ProductForm{
		Name:      strings.TrimSpace(f.inputs[fieldName].Value()),
		Price:     strings.TrimSpace(f.inputs[fieldPrice].Value()),
		Reference: strings.TrimSpace(f.inputs[fieldReference].Value()),
	}
}

// Reset clears every input and the validity flags.
func (f *ProductForm) Reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	*f.state = FormState{}
}

func (f *ProductForm) renderRow(field formField, label string, valid, focused bool, suffix string) string {
	lbl := labelStyle.Width(11).Render(label)
	if focused {
		lbl = lbl + lipgloss.NewStyle().Foreground(ColorOrange).Render("›")
	} else {
		lbl = lbl + " "
	}

	mark := lipgloss.NewStyle().Foreground(ColorRed).Render("✗")
	if valid {
		mark = lipgloss.NewStyle().Foreground(ColorGreen).Render("✓")
	}
	row := lbl + " " + f.inputs[field].View() + " " + mark
	if suffix != "" {
		row += " " + suffix
	}
	return row
}

func renderButton(label string, enabled bool) string {
	style := lipgloss.NewStyle().Padding(0, 1)
	if enabled {
		style = style.Background(ColorBlue).Foreground(ColorWhite).Bold(true)
	} else {
		style = style.Foreground(ColorGray).Faint(true)
	}
	return style.Render(label)
}

// View renders the form section. focus may be a non-input field.
func (f *ProductForm) View(focus formField, width int) string {
	check := renderButton(f.state.ReferenceButtonLabel(), !f.state.ReferenceValid)
	rows := []string{
		f.renderRow(fieldName, "Name", f.state.NameValid, focus == fieldName, ""),
		f.renderRow(fieldPrice, "Price", f.state.PriceValid, focus == fieldPrice, ""),
		f.renderRow(fieldReference, "Reference", f.state.ReferenceValid, focus == fieldReference, check),
		"",
		renderButton("Add product", f.state.FormValid()),
	}
	style := sectionStyle
	if width > 2 {
		style = style.Width(width - 2)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
