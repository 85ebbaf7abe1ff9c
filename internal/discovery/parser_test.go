package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

const userTestSource = `package org.example.users;

import junit.framework.TestCase;

public class UserTest extends TestCase
{
    public void testCreateUser()
    {
    }

    static final class NestedTest
    {
    }
}

abstract class AbstractUserTest
{
}

class Helper
{
}
`

func TestParser_FindClasses(t *testing.T) {
	parser := NewParser(NewScanner(nil))

	testFile := filepath.Join(t.TempDir(), "UserTest.java")
	if err := os.WriteFile(testFile, []byte(userTestSource), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	t.Run("finds concrete test classes", func(t *testing.T) {
		classes, err := parser.FindClasses(testFile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{"org.example.users.NestedTest", "org.example.users.UserTest"}
		if len(classes) != len(expected) {
			t.Fatalf("expected %v, got %v", expected, classes)
		}
		for i := range expected {
			if classes[i] != expected[i] {
				t.Errorf("expected %s, got %s", expected[i], classes[i])
			}
		}
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		_, err := parser.FindClasses("/non/existent/file.java")
		if err == nil {
			t.Error("expected error for non-existent file")
		}
	})
}

func TestParser_FindTestClasses(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"src/test/java/a/BasicTest.java": "package a;\npublic class BasicTest {}\n",
		"src/test/java/b/BasicTest.java": "package b;\npublic class BasicTest {}\n",
		"src/test/java/b/PlainIT.java":   "package b;\npublic class PlainIT {}\n",
		"src/main/java/b/App.java":       "package b;\npublic class App {}\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	classes, err := NewParser(NewScanner(nil)).FindTestClasses(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"a.BasicTest", "b.BasicTest", "b.PlainIT"}
	if len(classes) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, classes)
	}
	for i := range expected {
		if classes[i] != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], classes[i])
		}
	}
}
