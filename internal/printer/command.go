package printer

import "image"

type CommandKind int

const (
	CommandScanAndConnect CommandKind = iota
	CommandDisconnect
	CommandPrintImage
	CommandPrintText
)

// A single instruction for the controller loop. Commands are processed in
// submission order, one at a time; a print started before a disconnect
// always finishes first.
type Command struct {
	Kind  CommandKind
	Image image.Image
	Text  string
	Font  string
	Size  float64
}

// Starts a scan for a compatible printer and connects to the first match.
func ScanAndConnect() Command {
	return Command{Kind: CommandScanAndConnect}
}

// Tears down the active connection, if any.
func Disconnect() Command {
	return Command{Kind: CommandDisconnect}
}

// Prints an image through the active connection.
func PrintImage(i image.Image) Command {
	return Command{Kind: CommandPrintImage, Image: i}
}

// Renders text with the named font at the given pixel size and prints it.
func PrintText(text string, font string, size float64) Command {
	return Command{Kind: CommandPrintText, Text: text, Font: font, Size: size}
}
