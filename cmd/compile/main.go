package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/RobertDurfee/Gerrymandering/internal/feature"
	"github.com/RobertDurfee/Gerrymandering/internal/geography"
	"github.com/RobertDurfee/Gerrymandering/internal/query"
)

// capture records the statement it is handed instead of running it.
type capture struct {
	stmt *query.Statement
}

func (c *capture) Query(ctx context.Context, stmt query.Statement) ([]feature.Row, error) {
	c.stmt = &stmt
	return nil, nil
}

// compile prints the SQL and arguments a request compiles to, without a
// database. Quote the target in the shell:
//
//	compile '/states/WI/races/president/years/2016/votes?group=county'
func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <path?query>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(os.Stdout, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, target string) error {
	c := &capture{}
	router := geography.SetupRoutes(&geography.Handler{Exec: c})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if c.stmt == nil {
		return fmt.Errorf("%d: %s", rec.Code, rec.Body.String())
	}

	fmt.Fprintln(w, c.stmt.SQL)
	for i, a := range c.stmt.Args {
		fmt.Fprintf(w, "$%d = %q\n", i+1, a)
	}
	return nil
}
