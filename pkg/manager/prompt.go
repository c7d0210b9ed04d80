package manager

import (
	"fmt"
	"io"
)

// AnsiClearLine erases the echoed ^C before the notice.
const AnsiClearLine = "\033[2K\n"

const shutdownNotice = "Stopping services, waiting for them to finish. Press Ctrl+C again to force exit.\n"

func gracefulShutdownPrompt(out io.Writer) {
	fmt.Fprint(out, AnsiClearLine, shutdownNotice)
}
