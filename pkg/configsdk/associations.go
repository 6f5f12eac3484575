package configsdk

import (
	"net/url"
	"strings"
)

const (
	associationsKey      = "associations"
	associationSeparator = "|"
)

// EncodeAssociations renders an association filter as ordered query pairs:
// every application as "application|<name>|<version>", followed by every
// environment as "environment|<env>". Values are not validated.
func EncodeAssociations(a *Associations) []QueryParam {
	if a == nil {
		return nil
	}

	params := make([]QueryParam, 0, len(a.Applications)+len(a.Environments))
	for _, app := range a.Applications {
		params = append(params, QueryParam{
			Key:   associationsKey,
			Value: strings.Join([]string{"application", app.Name, app.Version}, associationSeparator),
		})
	}
	for _, env := range a.Environments {
		params = append(params, QueryParam{
			Key:   associationsKey,
			Value: "environment" + associationSeparator + env,
		})
	}
	return params
}

// encodeQuery joins params in the given order. url.Values would sort the keys.
func encodeQuery(params []QueryParam) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// configQuery builds the query of a configuration lookup.
func configQuery(name string, a *Associations) string {
	params := []QueryParam{
		{Key: "isActive", Value: "true"},
		{Key: "names", Value: name},
	}
	params = append(params, EncodeAssociations(a)...)
	return encodeQuery(params)
}
