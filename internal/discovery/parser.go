package discovery

import (
	"fmt"
	"os"
	"regexp"
	"sort"
)

var (
	packagePattern = regexp.MustCompile(`(?m)^\s*package\s+([\w.]+)\s*;`)
	// Matches:
	// - public class UserTest extends TestCase
	// - final class OrderIT
	// - public abstract class BaseTest (excluded below)
	classPattern = regexp.MustCompile(`(?m)^\s*((?:(?:public|protected|private|static|final|abstract)\s+)*)class\s+(\w+)`)
	abstractWord = regexp.MustCompile(`\babstract\b`)
)

// Parser extracts test classes from fixture sources
type Parser struct {
	scanner *Scanner
}

// NewParser creates a new Parser
func NewParser(scanner *Scanner) *Parser {
	return &Parser{scanner: scanner}
}

// FindTestClasses lists the fully-qualified test classes declared under root
func (p *Parser) FindTestClasses(root string) ([]string, error) {
	files, err := p.scanner.Scan(root)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, file := range files {
		classes, err := p.FindClasses(file)
		if err != nil {
			return nil, err
		}
		for _, class := range classes {
			seen[class] = true
		}
	}

	classes := make([]string, 0, len(seen))
	for class := range seen {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes, nil
}

// FindClasses finds the concrete test classes declared in a source file
func (p *Parser) FindClasses(filePath string) ([]string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	source := string(content)

	pkg := ""
	if m := packagePattern.FindStringSubmatch(source); len(m) > 1 {
		pkg = m[1] + "."
	}

	var classes []string
	for _, match := range classPattern.FindAllStringSubmatch(source, -1) {
		if abstractWord.MatchString(match[1]) {
			continue
		}
		if !IsTestSource(match[2] + ".java") {
			continue
		}
		classes = append(classes, pkg+match[2])
	}
	sort.Strings(classes)
	return classes, nil
}
