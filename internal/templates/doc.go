// Package templates holds the text templates autoroute writes once and then
// leaves to the user: the page group dispatcher scaffold and the starter
// projects created by "autoroute init".
//
// # Available Templates
//
//   - minimal: a home page, an about page and the not-found component
//   - groups: minimal plus a config page group with two variants
//
// # Usage
//
//	tmpl, err := templates.Get("groups")
//	if err != nil {
//	    return err
//	}
//	if err := tmpl.Create(osfs.New(dir), templates.Config{ProjectName: "app"}); err != nil {
//	    return err
//	}
//
// # Template Variables
//
// Project templates are executed with a Config; the dispatcher scaffold with
// DispatcherData.
package templates
