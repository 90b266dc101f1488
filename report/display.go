package report

import (
	"fmt"

	"github.com/pterm/pterm"
)

var (
	errorStyle   = pterm.NewStyle(pterm.FgRed, pterm.Bold)
	warnStyle    = pterm.NewStyle(pterm.FgYellow, pterm.Bold)
	infoStyle    = pterm.NewStyle(pterm.FgLightGreen)
	contextStyle = pterm.NewStyle(pterm.FgGray)
)

// displayError displays a transpilation error with its source position.
func displayError(fileName string, err TranspileError) {
	displayMessage(errorStyle.Sprint("error"), fileName, err)
}

// displayWarning displays an advisory message with its source position.
func displayWarning(fileName string, err TranspileError) {
	displayMessage(warnStyle.Sprint("warning"), fileName, err)
}

// displayPhase displays an informational pipeline phase message.
func displayPhase(msg string) {
	infoStyle.Print("==> ")
	fmt.Println(msg)
}

// displayMessage displays an error or warning.  The label is the styled string
// to prefix the message with, eg. a red "error".
func displayMessage(label, fileName string, err TranspileError) {
	if span := err.Span(); span != nil {
		fmt.Printf("%s %s %s\n",
			contextStyle.Sprintf("%s:%d:%d:", fileName, span.StartLine+1, span.StartCol+1),
			label+":",
			err.Error(),
		)
	} else {
		fmt.Printf("%s %s %s\n", contextStyle.Sprint(fileName+":"), label+":", err.Error())
	}
}
