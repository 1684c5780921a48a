package service

import "ms-edarshan/internal/models"

// DefaultTemples is the directory loaded by the seed endpoint and cmd/seed.
func DefaultTemples() []models.Temple {
	return []models.Temple{
		{
			Name:         "Dwarkadhish Temple",
			Location:     "Dwarka, Gujarat",
			Image:        "https://is.zobj.net/image-server/v1/images?r=O-HndYx03texUjmLtO8NO9cjWUoeAvoLtd5CQ3mBxxprww3u06f2XQs2jqaAEo2Oylg-Pt_X54HJb6sBHAmfge51ZHtCt6VAAEH37-Fx6E_i4bR8FkXjenraRJm0pX-hiY4EtcHC0fPUlZzZ5vFbf0meDgaFOBLU_g3M9icuLOLu51cInsZ48ofmp5Q1zdHkVeIrSKKTfemwfvphfxntdXtzHCcbuGw4rKtBL_hzLjdWZMuro-1CwhPwkvE",
			Capacity:     500,
			OpenTime:     "05:00",
			CloseTime:    "21:00",
			TicketPrices: models.PriceTable{Regular: 50, VIP: 200, Senior: 25},
		},
		{
			Name:         "Somnath Temple",
			Location:     "Somnath, Gujarat",
			Image:        "https://is.zobj.net/image-server/v1/images?r=9FJrXokpZDEIb4uza69c-ZOg9vR5bJfjnLfL-Ya5QIutvCFODqDzj94IFAbqj89v3nn-a8656DofsJEksTLVfeA3GykLdaa61kEFK4wIEXSIb8OFBK5ER2dGTjORHqAJFnrLNPpohehOGG2MQFFpsNvw_KObMcFuNPpuQH4tgKwpoX6lN3nxP7soDh88ZSlPbZpLO4Iq1i_UiWF1DSZSL-ydB2KujK3KIAvxFqdlcVNd3OzCmBTWPMEW0yc",
			Capacity:     400,
			OpenTime:     "06:00",
			CloseTime:    "20:00",
			TicketPrices: models.PriceTable{Regular: 30, VIP: 150, Senior: 15},
		},
		{
			Name:         "Pavagadh Temple",
			Location:     "Pavagadh Hill, Gujarat",
			Image:        "https://encrypted-tbn0.gstatic.com/images?q=tbn:ANd9GcSPwn5B78JSphl3S32nVswhb3vhWsF9iFqZtA&s",
			Capacity:     400,
			OpenTime:     "05:00",
			CloseTime:    "19:00",
			TicketPrices: models.PriceTable{Regular: 50, VIP: 150, Senior: 25},
		},
	}
}
