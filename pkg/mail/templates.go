package mail

import "fmt"

// The platform serves an Arabic-first audience; transactional emails render
// right-to-left with an English-readable code or link embedded.

const (
	SubjectVerification  = "رمز التحقق - Syria Shof"
	SubjectPasswordReset = "إعادة تعيين كلمة المرور - Syria Shof"
)

const emailShell = `<!DOCTYPE html>
<html dir="rtl" lang="ar">
<head><meta charset="UTF-8"></head>
<body style="margin:0;padding:0;font-family:Arial,sans-serif;background-color:#f4f4f4;">
<table width="100%%" cellpadding="0" cellspacing="0" style="padding:20px;"><tr><td align="center">
<table width="600" cellpadding="0" cellspacing="0" style="background:white;border-radius:10px;overflow:hidden;">
<tr><td style="background:linear-gradient(135deg,#007A3D 0%%,#004d25 100%%);padding:30px;text-align:center;">
<h1 style="color:white;margin:0;font-size:32px;">Syria Shof</h1>
<p style="color:rgba(255,255,255,0.9);margin:10px 0 0 0;">شوف سوريا</p>
</td></tr>
<tr><td style="padding:40px 30px;text-align:center;">%s</td></tr>
<tr><td style="background:#f8f9fa;padding:20px;text-align:center;border-top:1px solid #e0e0e0;">
<p style="color:#999;font-size:12px;margin:0;">Syria Shof - منصة المحتوى السوري</p>
</td></tr>
</table></td></tr></table>
</body></html>`

// VerificationBody renders the email carrying a 6-digit confirmation code.
func VerificationBody(code string) string {
	content := fmt.Sprintf(`<h2 style="color:#333;margin:0 0 20px 0;">رمز التحقق من البريد الإلكتروني</h2>
<p style="color:#666;font-size:16px;">مرحباً بك في Syria Shof! استخدم الرمز التالي للتحقق من بريدك الإلكتروني:</p>
<div style="background:white;padding:20px 40px;border:3px solid #007A3D;border-radius:8px;display:inline-block;margin:20px 0;">
<span style="font-size:36px;font-weight:bold;color:#007A3D;letter-spacing:8px;">%s</span>
</div>
<p style="color:#999;font-size:14px;">هذا الرمز صالح لمدة 10 دقائق</p>
<p style="color:#666;font-size:14px;">إذا لم تقم بإنشاء حساب، يمكنك تجاهل هذه الرسالة بأمان.</p>`, code)

	return fmt.Sprintf(emailShell, content)
}

// PasswordResetBody renders the email carrying a one-time reset link.
func PasswordResetBody(resetLink string) string {
	content := fmt.Sprintf(`<h2 style="color:#333;margin:0 0 20px 0;">إعادة تعيين كلمة المرور</h2>
<p style="color:#666;font-size:16px;">لقد تلقينا طلباً لإعادة تعيين كلمة المرور الخاصة بك. انقر على الرابط أدناه لإنشاء كلمة مرور جديدة:</p>
<div style="margin:30px 0;">
<a href="%s" style="display:inline-block;background:#007A3D;color:white;padding:15px 40px;text-decoration:none;border-radius:8px;font-size:18px;font-weight:bold;">إعادة تعيين كلمة المرور</a>
</div>
<p style="color:#007A3D;font-size:12px;word-break:break-all;padding:10px;background:#f8f9fa;border-radius:5px;">%s</p>
<p style="color:#999;font-size:14px;">هذا الرابط صالح لمدة ساعة واحدة فقط</p>
<p style="color:#666;font-size:14px;">إذا لم تطلب إعادة تعيين كلمة المرور، يمكنك تجاهل هذه الرسالة بأمان.</p>`, resetLink, resetLink)

	return fmt.Sprintf(emailShell, content)
}
