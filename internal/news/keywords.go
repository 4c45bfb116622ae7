package news

// positiveKeywords are the disclosure patterns worth surfacing, lowercase
// and ASCII-folded. Order matters: matching stops at the first hit, so the
// more specific wording of a category comes before the generic one.
var positiveKeywords = []string{
	// contracts
	"sozlesme imzalanmistir",
	"sozlesme imzalandi",
	"sozlesme akdedilmistir",
	"cerceve sozlesme",
	"is birligi protokolu",
	"is birligi anlasmas",
	"niyet mektubu",
	"mutabakat zapti",
	"hizmet sozlesmesi",
	"danismanlik sozlesmesi",
	"bayi sozlesmesi",
	"distributorluk sozlesmesi",
	"lisans sozlesmesi",
	"franchise sozlesmesi",
	"tahkim sonucu lehimize",

	// tenders
	"ihale kazanilmistir",
	"ihale uhdemizde",
	"ihalenin kazanildigi",
	"en avantajli teklif",
	"ihale bedeli",
	"teklifimiz kabul",
	"ihalede en uygun",
	"yeterlilik almistir",
	"yer aldigi teblig",
	"ihale sonucu",
	"en dusuk teklif",
	"mukavele imza",
	"is emri alinmistir",
	"is emri verilmistir",

	// orders and exports
	"yeni siparis",
	"siparis alinmasi",
	"siparis alinmistir",
	"ihracat baglantisi",
	"ihracat siparis",
	"tedarik sozlesmesi",
	"toplu siparis",
	"satis sozlesmesi",
	"satisa iliskin",

	// production and plants
	"tesis devreye",
	"devreye alinmistir",
	"devreye alinacaktir",
	"uretim baslamistir",
	"uretim kapasitesi artir",
	"kapasite artirimi",
	"kapasite artis",
	"yeni fabrika",
	"yeni tesis",
	"yeni santral",
	"yeni maden",
	"yeni saha",
	"uretim rekoru",
	"acilis yapilmistir",
	"faaliyete gecmistir",
	"kurulum tamamlanmistir",
	"montaj tamamlanmistir",
	"insaat tamamlanmistir",

	// investment and incentives
	"yatirim tesvik belgesi",
	"tesvik belgesi alinmistir",
	"milyon dolar",
	"milyon euro",
	"milyar dolar",
	"milyar euro",
	"milyon tl",
	"milyar tl",
	"yatirim karari",
	"yatirim programi",
	"stratejik yatirim",
	"ar-ge projesi",
	"tubitak destegi",
	"hibe destegi",
	"fondan kaynak",

	// mergers and partnerships
	"birlesme sozlesmesi",
	"devralma islemleri",
	"istirak edinilmesi",
	"istirak satin",
	"ortaklik yapisi",
	"hisse devir",
	"hisse satis",
	"pay devri",
	"joint venture",
	"konsorsiyum",
	"sirket satin alim",
	"sirket birlesme",
	"pay alim teklif",
	"stratejik ortak",

	// capital moves
	"bedelsiz sermaye artirimi",
	"bedelsiz pay",
	"sermaye artirimi",
	"ic kaynaklardan sermaye",
	"pay geri alim programi",
	"geri alim programi",
	"temettu avans",
	"bonus pay",

	// licences and approvals
	"spk onaylanmistir",
	"spk onayi alinmistir",
	"rekabet kurulu onay",
	"bddk onay",
	"epdk lisans",
	"ced olumlu",
	"ruhsat alinmasi",
	"ruhsat verilmistir",
	"lisans alinmistir",
	"yetki belgesi",
	"patent alinmistir",
	"patent tescil",
	"marka tescil",
	"iso sertifika",
	"akreditasyon",

	// financial results
	"kar artisi",
	"gelir artisi",
	"hasilat artisi",
	"ciro artisi",
	"satislar artti",
	"net kar",
	"brut kar artis",
	"faaliyet kari artis",
	"ebitda artis",
	"rekor gelir",
	"rekor kar",
	"rekor hasilat",
	"beklentilerin uzerinde",
	"hedefin uzerinde",
	"pozitif revizyon",
	"tahmin yukari",

	// real estate
	"arazi satin alinmistir",
	"gayrimenkul satin",
	"tasinmaz edinim",
	"arsa alim",
	"konut satis",
	"imar izni",
	"imar plan degisiklig",
	"insaat ruhsati",

	// energy and mining
	"enerji uretim lisansi",
	"ges projesi",
	"res projesi",
	"santral devreye",
	"maden isletme ruhsati",
	"petrol arama ruhsati",
	"dogalgaz bulunmus",
	"petrol bulunmus",
	"rezerv artis",
	"mw kapasiteli",
	"mwp gunes",
	"mwe ruzgar",

	// technology
	"yazilim sozlesmesi",
	"teknoloji ortakligi",
	"dijital donusum",
	"yeni urun lansmani",
	"platform devreye",
	"mobil uygulama",
	"e-ticaret",
	"yapay zeka",
	"blockchain",

	// financing
	"kredi sozlesmesi imzalanmistir",
	"finansman anlasmasi",
	"tahvil ihraci basarili",
	"refinansman tamamlanmistir",
	"borc yapilandirma",
	"sendikasyon kredisi",
	"eurobond ihraci",
	"sukuk ihraci",

	// international
	"yabanci yatirimci",
	"uluslararasi ihale",
	"uluslararasi sozlesme",
	"yurtdisi is",
	"global ortaklik",
	"yabanci ortak",
	"uluslararasi sertifika",
	"ihracat hacmi artis",

	// general positives
	"artis gostermistir",
	"basarili sonuclanmistir",
	"olumlu gelisme",
	"olumlu sonuclanmistir",
	"onaylanmistir",
	"taahhutte bulunulmustur",
	"kazanim saglanmistir",
	"gelisime katkida",
	"iyilestirme",
	"verimlilik artis",
	"pazar payi artis",
	"musteri sayisi artis",
	"abone sayisi artis",

	// offering process
	"halka arz",
	"halka arz onay",
	"halka arz izahname",
	"halka arz talep toplama",
	"halka arz fiyat",
}
