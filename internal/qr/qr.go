// Package qr renders the public MyInvois validation link of an accepted
// document as a QR code.
package qr

import (
	qrcode "github.com/skip2/go-qrcode"

	"github.com/yijian0905/erp-einvoice/internal/model"
)

// Portal hosts for the public validation page.
const (
	sandboxPortal    = "https://preprod.myinvois.hasil.gov.my"
	productionPortal = "https://myinvois.hasil.gov.my"
)

// pngSize is the rendered QR edge length in pixels.
const pngSize = 256

// ValidationLink builds the public validation URL for a document. The long
// id acts as the share token issued by the provider once the document is
// valid.
func ValidationLink(env model.Environment, documentUUID, longID string) string {
	portal := sandboxPortal
	if env == model.EnvProduction {
		portal = productionPortal
	}
	return portal + "/" + documentUUID + "/share/" + longID
}

// PNG renders a link as a QR code PNG.
func PNG(link string) ([]byte, error) {
	return qrcode.Encode(link, qrcode.Medium, pngSize)
}
