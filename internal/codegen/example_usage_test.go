package codegen_test

import (
	"fmt"
	"log"

	"github.com/okra-platform/apigen/internal/codegen"
	"github.com/okra-platform/apigen/internal/model"
)

func Example_usage() {
	// Create a sample description model
	m := &model.Model{
		Types: map[string]model.TypeDescription{
			"App.Widget": {
				Name:      "Widget",
				Namespace: "App",
				Properties: []model.PropertyDescription{
					{Name: "id", Type: "System.Int32", IsRequired: true},
					{Name: "label", Type: "System.String"},
				},
			},
		},
	}

	opts := codegen.DefaultOptions()
	opts.NamespacePrefix = "App"

	res, err := codegen.New(opts).Generate(m)
	if err != nil {
		log.Fatal(err)
	}

	for _, a := range res.Artifacts {
		fmt.Printf("// %s\n%s", a.FileName(), a.Content)
	}

	// Output:
	// // Widget.ts
	// export interface Widget {
	//   id: number;
	//   label?: string;
	// }
	// // index.ts
	// export * from './Widget';
}
